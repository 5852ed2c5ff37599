package adapters

import (
	"context"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// rootDocument is the stored shape of the root node.
type rootDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	treefs.Node `bson:",inline"`
}

// MongoStore keeps the tree as a single root document in a MongoDB collection.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
	logger  util.Logger
}

// NewMongoStore connects to cfg.MongoURI and pings the server before returning.
func NewMongoStore(ctx context.Context, cfg *config.Config) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	s := &MongoStore{
		client:  client,
		coll:    client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection),
		timeout: time.Duration(cfg.StoreTimeout) * time.Second,
		logger:  util.GetLogger("MongoStore"),
	}

	pingCtx, cancel := s.callContext(ctx)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongo ping")
	}
	s.logger.Info().
		Str("database", cfg.MongoDatabase).
		Str("collection", cfg.MongoCollection).
		Msg("Connected to mongo")
	return s, nil
}

func (s *MongoStore) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MongoStore) FindRoot(ctx context.Context) (*treefs.Node, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	var doc rootDocument
	err := s.coll.FindOne(ctx, bson.M{"name": treefs.RootName, "parent": nil}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo find root")
	}
	root := doc.Node.Clone()
	root.Key = doc.ID.Hex()
	return root, nil
}

func (s *MongoStore) CreateRoot(ctx context.Context, root *treefs.Node) (*treefs.Node, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	doc := rootDocument{Node: *root.Clone()}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, "mongo insert root")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.Errorf("mongo insert root: unexpected id type %T", res.InsertedID)
	}
	created := doc.Node.Clone()
	created.Key = oid.Hex()
	s.logger.Debug().Str("key", created.Key).Msg("Created root document")
	return created, nil
}

func (s *MongoStore) ReplaceChildren(ctx context.Context, rootKey string, children []*treefs.Node) (treefs.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(rootKey)
	if err != nil {
		return treefs.UpdateResult{}, errors.Wrapf(err, "mongo root key %q", rootKey)
	}
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if children == nil {
		children = []*treefs.Node{}
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"children": children}},
	)
	if err != nil {
		return treefs.UpdateResult{}, errors.Wrap(err, "mongo update children")
	}
	return treefs.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return errors.Wrap(s.client.Disconnect(ctx), "mongo disconnect")
}
