package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ikolcov/learnit/internal/models"
)

type MongoStorage struct {
	client *mongo.Client
	posts  *mongo.Collection
	users  *mongo.Collection
}

type postDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	URL         string             `bson:"url"`
	Status      string             `bson:"status"`
	User        primitive.ObjectID `bson:"user"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Author      *authorDocument    `bson:"author,omitempty"`
}

type authorDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
}

func (d postDocument) toPost() models.Post {
	post := models.Post{
		Id:          models.PostID(d.ID.Hex()),
		Title:       d.Title,
		Description: d.Description,
		URL:         d.URL,
		Status:      d.Status,
		AuthorId:    models.UserID(d.User.Hex()),
		CreatedAt:   d.CreatedAt,
	}
	if d.Author != nil {
		post.Author = &models.Author{
			Id:       models.UserID(d.Author.ID.Hex()),
			Username: d.Author.Username,
		}
	}
	return post
}

func addIndex(ctx context.Context, collection *mongo.Collection, field string) error {
	index := mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
	}
	_, err := collection.Indexes().CreateOne(ctx, index)
	return err
}

func (s *MongoStorage) GetUserPosts(ctx context.Context, userId models.UserID) ([]models.Post, error) {
	user, err := primitive.ObjectIDFromHex(string(userId))
	if err != nil {
		return make([]models.Post, 0), nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user", Value: user}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: s.users.Name()},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "description", Value: 1},
			{Key: "url", Value: 1},
			{Key: "status", Value: 1},
			{Key: "user", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "author._id", Value: 1},
			{Key: "author.username", Value: 1},
		}}},
	}

	cur, err := s.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate user posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := make([]models.Post, 0)
	for cur.Next(ctx) {
		var elem postDocument
		if err := cur.Decode(&elem); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		posts = append(posts, elem.toPost())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate user posts: %w", err)
	}
	return posts, nil
}

func (s *MongoStorage) AddPost(ctx context.Context, post models.Post) (models.Post, error) {
	if err := post.Validate(); err != nil {
		return models.Post{}, err
	}
	user, err := primitive.ObjectIDFromHex(string(post.AuthorId))
	if err != nil {
		return models.Post{}, models.ErrUnauthorized
	}

	doc := postDocument{
		ID:          primitive.NewObjectID(),
		Title:       post.Title,
		Description: post.Description,
		URL:         post.URL,
		Status:      post.Status,
		User:        user,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return doc.toPost(), nil
}

// ownedFilter matches a post only by its id together with its owner.
func ownedFilter(postId models.PostID, userId models.UserID) (bson.D, bool) {
	id, err := primitive.ObjectIDFromHex(string(postId))
	if err != nil {
		return nil, false
	}
	user, err := primitive.ObjectIDFromHex(string(userId))
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: id}, {Key: "user", Value: user}}, true
}

func (s *MongoStorage) UpdatePost(ctx context.Context, postUpdate models.Post) (models.Post, error) {
	filter, ok := ownedFilter(postUpdate.Id, postUpdate.AuthorId)
	if !ok {
		return models.Post{}, models.ErrNotFound
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: postUpdate.Title},
		{Key: "description", Value: postUpdate.Description},
		{Key: "url", Value: postUpdate.URL},
		{Key: "status", Value: postUpdate.Status},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc postDocument
	err := s.posts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Post{}, models.ErrNotFound
	} else if err != nil {
		return models.Post{}, fmt.Errorf("update post: %w", err)
	}
	return doc.toPost(), nil
}

func (s *MongoStorage) DeletePost(ctx context.Context, postId models.PostID, userId models.UserID) (models.Post, error) {
	filter, ok := ownedFilter(postId, userId)
	if !ok {
		return models.Post{}, models.ErrNotFound
	}

	var doc postDocument
	err := s.posts.FindOneAndDelete(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Post{}, models.ErrNotFound
	} else if err != nil {
		return models.Post{}, fmt.Errorf("delete post: %w", err)
	}
	return doc.toPost(), nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func NewMongoStorage(ctx context.Context, mongoUrl string, mongoDbName string) (*MongoStorage, error) {
	clientOptions := options.Client().ApplyURI(mongoUrl)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(mongoDbName)
	posts := db.Collection("posts")
	if err := addIndex(ctx, posts, "user"); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create posts index: %w", err)
	}

	return &MongoStorage{
		client: client,
		posts:  posts,
		users:  db.Collection("users"),
	}, nil
}
