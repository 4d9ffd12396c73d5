package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains connection settings for the MongoDB backend.
type MongoConfig struct {
	URI      string // e.g. mongodb://localhost:27017
	Database string // e.g. hyperstack
}

// MongoStore is the MongoDB Repository.
type MongoStore struct {
	client     *mongo.Client
	users      *mongo.Collection
	scores     *mongo.Collection
	ctxTimeout time.Duration
}

var _ Repository = (*MongoStore)(nil)

type userDoc struct {
	Username   string    `bson:"username"`
	CreatedAt  time.Time `bson:"createdAt"`
	LastActive time.Time `bson:"lastActive"`
}

type scoreDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	GameID    string    `bson:"gameId"`
	Score     int       `bson:"score"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d scoreDoc) entry() ScoreEntry {
	return ScoreEntry{
		ID:        d.ID,
		Username:  d.Username,
		GameID:    d.GameID,
		Score:     d.Score,
		CreatedAt: d.CreatedAt,
	}
}

// OpenMongo connects to MongoDB and ensures indexes.
func OpenMongo(cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "hyperstack"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("storage: cannot connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		return nil, fmt.Errorf("storage: cannot ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	store := &MongoStore{
		client:     client,
		users:      db.Collection("users"),
		scores:     db.Collection("scores"),
		ctxTimeout: 5 * time.Second,
	}
	if err := store.ensureIndexes(); err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		return nil, fmt.Errorf("storage: cannot create indexes: %w", err)
	}
	return store, nil
}

func (m *MongoStore) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()

	_, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return err
	}
	_, err = m.scores.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "gameId", Value: 1}, {Key: "score", Value: -1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("game_top"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "gameId", Value: 1}},
			Options: options.Index().SetName("user_game"),
		},
	})
	return err
}

// withTimeout bounds ctx by the store timeout.
func (m *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.ctxTimeout)
}

// Close terminates the connection.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Login implements Repository.
func (m *MongoStore) Login(ctx context.Context, username string) (User, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	res := m.users.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{
			"$set":         bson.M{"lastActive": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var doc userDoc
	if err := res.Decode(&doc); err != nil {
		return User{}, fmt.Errorf("storage: cannot upsert user: %w", err)
	}
	return User{Username: doc.Username, CreatedAt: doc.CreatedAt, LastActive: doc.LastActive}, nil
}

// UserExists implements Repository.
func (m *MongoStore) UserExists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	n, err := m.users.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("storage: cannot query user: %w", err)
	}
	return n > 0, nil
}

// SaveScore implements Repository.
func (m *MongoStore) SaveScore(ctx context.Context, username, gameID string, score int) (ScoreEntry, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	doc := scoreDoc{
		ID:        uuid.NewString(),
		Username:  username,
		GameID:    gameOrDefault(gameID),
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := m.scores.InsertOne(ctx, doc); err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot save score: %w", err)
	}
	return doc.entry(), nil
}

var scoreOrder = bson.D{{Key: "score", Value: -1}, {Key: "createdAt", Value: 1}}

// userScoreOrder lists a player's own history with the newest run first on ties.
var userScoreOrder = bson.D{{Key: "score", Value: -1}, {Key: "createdAt", Value: -1}}

// TopScores implements Repository.
func (m *MongoStore) TopScores(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error) {
	return m.findScores(ctx,
		bson.M{"gameId": gameOrDefault(gameID)},
		normalizeLimit(limit, 10, 100),
		scoreOrder,
	)
}

// UserScores implements Repository.
func (m *MongoStore) UserScores(ctx context.Context, username, gameID string, limit int) ([]ScoreEntry, error) {
	return m.findScores(ctx,
		bson.M{"username": username, "gameId": gameOrDefault(gameID)},
		normalizeLimit(limit, 10, 100),
		userScoreOrder,
	)
}

// GlobalLeaderboard implements Repository.
func (m *MongoStore) GlobalLeaderboard(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"gameId": gameOrDefault(gameID)}}},
		{{Key: "$sort", Value: scoreOrder}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$username"},
			{Key: "doc", Value: bson.M{"$first": "$$ROOT"}},
		}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$doc"}}},
		{{Key: "$sort", Value: scoreOrder}},
		{{Key: "$limit", Value: normalizeLimit(limit, 10, 100)}},
	}
	cur, err := m.scores.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot aggregate scores: %w", err)
	}
	return decodeScores(ctx, cur)
}

// BestScore implements Repository.
func (m *MongoStore) BestScore(ctx context.Context, username, gameID string) (int, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var doc scoreDoc
	err := m.scores.FindOne(ctx,
		bson.M{"username": username, "gameId": gameOrDefault(gameID)},
		options.FindOne().SetSort(scoreOrder),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}
	return doc.Score, nil
}

// CountAbove implements Repository.
func (m *MongoStore) CountAbove(ctx context.Context, gameID string, score int) (int, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	n, err := m.scores.CountDocuments(ctx, bson.M{
		"gameId": gameOrDefault(gameID),
		"score":  bson.M{"$gt": score},
	})
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count scores: %w", err)
	}
	return int(n), nil
}

// Stats implements Repository.
func (m *MongoStore) Stats(ctx context.Context) ([]GameStats, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$gameId"},
			{Key: "games", Value: bson.M{"$sum": 1}},
			{Key: "players", Value: bson.M{"$addToSet": "$username"}},
			{Key: "high", Value: bson.M{"$max": "$score"}},
			{Key: "avg", Value: bson.M{"$avg": "$score"}},
			{Key: "last", Value: bson.M{"$max": "$createdAt"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cur, err := m.scores.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	defer cur.Close(ctx)

	var stats []GameStats
	for cur.Next(ctx) {
		var doc struct {
			GameID  string    `bson:"_id"`
			Games   int       `bson:"games"`
			Players []string  `bson:"players"`
			High    int       `bson:"high"`
			Avg     float64   `bson:"avg"`
			Last    time.Time `bson:"last"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("storage: cannot decode stats: %w", err)
		}
		stats = append(stats, GameStats{
			GameID:     doc.GameID,
			GamesCount: doc.Games,
			Players:    len(doc.Players),
			HighScore:  doc.High,
			AvgScore:   doc.Avg,
			LastPlayed: doc.Last,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("storage: cursor error: %w", err)
	}
	return stats, nil
}

func (m *MongoStore) findScores(ctx context.Context, filter bson.M, limit int, order bson.D) ([]ScoreEntry, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	cur, err := m.scores.Find(ctx, filter, options.Find().SetSort(order).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	return decodeScores(ctx, cur)
}

func decodeScores(ctx context.Context, cur *mongo.Cursor) ([]ScoreEntry, error) {
	defer cur.Close(ctx)

	entries := []ScoreEntry{}
	for cur.Next(ctx) {
		var doc scoreDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("storage: cannot decode score: %w", err)
		}
		entries = append(entries, doc.entry())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("storage: cursor error: %w", err)
	}
	return entries, nil
}
