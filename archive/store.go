package archive

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound means that no record has the requested id
var ErrNotFound = errors.New("record not found")

// Store keeps records by id
type Store interface {
	Put(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	IDs(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

const connectTimeout = 10 * time.Second

// RedisStore keeps each record as a JSON string and the ids in a set
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at addr. Keys start with prefix.
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctxPing, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to connect to redis")
	}
	if prefix == "" {
		prefix = "goban"
	}
	return &RedisStore{client: client, prefix: strings.TrimSuffix(prefix, ":")}, nil
}

func (s *RedisStore) index() string {
	return s.prefix + ":games"
}

func (s *RedisStore) Put(ctx context.Context, r Record) error {
	j, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "json marshal error")
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.Key(s.prefix), j, 0)
		pipe.SAdd(ctx, s.index(), r.ID)
		return nil
	})
	return errors.Wrapf(err, "failed to store record %s", r.ID)
}

func (s *RedisStore) Get(ctx context.Context, id string) (Record, error) {
	var r Record
	j, err := s.client.Get(ctx, Record{ID: id}.Key(s.prefix)).Bytes()
	if errors.Is(err, redis.Nil) {
		return r, errors.Wrap(ErrNotFound, id)
	}
	if err != nil {
		return r, errors.Wrapf(err, "failed to load record %s", id)
	}
	if err := json.Unmarshal(j, &r); err != nil {
		return r, errors.Wrapf(err, "record %s", id)
	}
	return r, nil
}

// IDs returns the stored ids in ascending order
func (s *RedisStore) IDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.index()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list records")
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisStore) Close(ctx context.Context) error {
	return s.client.Close()
}

// MongoStore keeps records as documents of one collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to uri and uses the "games" collection of database
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctxConnect, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctxConnect, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongodb")
	}
	if err := client.Ping(ctxConnect, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(err, "failed to ping mongodb")
	}
	if database == "" {
		database = "goban"
	}
	return &MongoStore{client: client, collection: client.Database(database).Collection("games")}, nil
}

// Put inserts r, replacing any record with the same id
func (s *MongoStore) Put(ctx context.Context, r Record) error {
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "failed to store record %s", r.ID)
}

func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	var r Record
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return r, errors.Wrap(ErrNotFound, id)
	}
	if err != nil {
		return r, errors.Wrapf(err, "failed to load record %s", id)
	}
	return r, nil
}

// IDs returns the stored ids in ascending order
func (s *MongoStore) IDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list records")
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode record id")
		}
		ids = append(ids, doc.ID)
	}
	return ids, errors.Wrap(cursor.Err(), "failed to list records")
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
