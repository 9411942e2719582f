package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kirana/utils"
)

type mongoDoc struct {
	ID   string `bson:"_id"`
	Data []byte `bson:"data"`
}

// Brokers shared per connection string, mirroring the file backend: handles
// in this process signal each other, other processes poll on read.
var (
	mongoBrokersMu sync.Mutex
	mongoBrokers   = map[string]*broker{}
)

func mongoBrokerFor(uri string) *broker {
	mongoBrokersMu.Lock()
	defer mongoBrokersMu.Unlock()
	b, ok := mongoBrokers[uri]
	if !ok {
		b = newBroker()
		mongoBrokers[uri] = b
	}
	return b
}

// OpenMongo opens a handle backed by MongoDB. Each key is one document in
// the collections collection; a write is a single ReplaceOne upsert, so the
// whole-value atomicity of the contract holds per key.
func OpenMongo(ctx context.Context, uri, database string) (Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &mongoStore{
		client: client,
		coll:   client.Database(database).Collection("collections"),
		origin: utils.GetUUID(),
		broker: mongoBrokerFor(uri + "/" + database),
	}, nil
}

type mongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	origin string
	broker *broker
}

func (s *mongoStore) Read(ctx context.Context, key string) ([]byte, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (s *mongoStore) Write(ctx context.Context, key string, data []byte) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, mongoDoc{ID: key, Data: data}, opts)
	if err != nil {
		return err
	}
	s.broker.publish(Change{Key: key, Origin: s.origin})
	return nil
}

func (s *mongoStore) Subscribe(fn func(Change)) func() {
	return s.broker.subscribe(s.origin, fn)
}

func (s *mongoStore) Origin() string { return s.origin }

func (s *mongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
