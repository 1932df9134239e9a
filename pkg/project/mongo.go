package project

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/storeshots/pkg/errors"
)

// MongoConfig configures a MongoBackend.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string

	// ConnectTimeout bounds the initial ping. Zero means 10s.
	ConnectTimeout time.Duration
}

// Default Mongo names.
const (
	DefaultMongoDatabase   = "storeshots"
	DefaultMongoCollection = "projects"
)

// MongoBackend stores one document per project plus a state document that
// holds the selection. Project order is kept in a position field.
type MongoBackend struct {
	client   *mongo.Client
	projects *mongo.Collection
	state    *mongo.Collection
}

type projectDoc struct {
	Project  `bson:",inline"`
	Position int `bson:"position"`
}

type stateDoc struct {
	ID         string `bson:"_id"`
	Version    int    `bson:"version"`
	SelectedID string `bson:"selected_id"`
}

const stateDocID = "state"

// NewMongoBackend connects to MongoDB and verifies the connection.
func NewMongoBackend(ctx context.Context, cfg MongoConfig) (*MongoBackend, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongo")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongo")
	}

	db := client.Database(cfg.Database)
	return &MongoBackend{
		client:   client,
		projects: db.Collection(cfg.Collection),
		state:    db.Collection(cfg.Collection + "_state"),
	}, nil
}

// Load reads all projects sorted by position plus the selection.
func (b *MongoBackend) Load(ctx context.Context) (Snapshot, error) {
	cur, err := b.projects.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInternal, err, "query projects")
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInternal, err, "decode projects")
	}

	snap := Snapshot{Version: SnapshotVersion, Projects: make([]Project, len(docs))}
	for i, d := range docs {
		snap.Projects[i] = d.Project
	}

	var st stateDoc
	err = b.state.FindOne(ctx, bson.D{{Key: "_id", Value: stateDocID}}).Decode(&st)
	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments):
	case err != nil:
		return Snapshot{}, errors.Wrap(errors.ErrCodeInternal, err, "read project state")
	default:
		snap.SelectedID = st.SelectedID
	}
	return snap, nil
}

// Save upserts every project, deletes projects no longer present and
// writes the selection.
func (b *MongoBackend) Save(ctx context.Context, snap Snapshot) error {
	ids := make(bson.A, 0, len(snap.Projects))
	models := make([]mongo.WriteModel, 0, len(snap.Projects))
	for i, p := range snap.Projects {
		ids = append(ids, p.ID)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: p.ID}}).
			SetReplacement(projectDoc{Project: p, Position: i}).
			SetUpsert(true))
	}

	if len(models) > 0 {
		if _, err := b.projects.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write projects")
		}
	}
	if _, err := b.projects.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$nin", Value: ids}}}}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "prune projects")
	}

	st := stateDoc{ID: stateDocID, Version: SnapshotVersion, SelectedID: snap.SelectedID}
	_, err := b.state.ReplaceOne(ctx, bson.D{{Key: "_id", Value: stateDocID}}, st, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write project state")
	}
	return nil
}

// Close disconnects the client.
func (b *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}

var _ Backend = (*MongoBackend)(nil)
