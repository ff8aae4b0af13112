package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/research-workspace/backend/internal/models"
)

// MongoStore handles project-scoped record CRUD in MongoDB.
type MongoStore struct {
	projects  *mongo.Collection
	sessions  *mongo.Collection
	documents *mongo.Collection
	reports   *mongo.Collection
}

var _ RecordStore = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		projects:  db.Collection("projects"),
		sessions:  db.Collection("research_sessions"),
		documents: db.Collection("documents"),
		reports:   db.Collection("reports"),
	}
}

// EnsureIndexes creates the owner and per-project listing indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("mongo index projects: %w", err)
	}
	byProject := mongo.IndexModel{
		Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
	}
	for _, col := range []*mongo.Collection{s.sessions, s.documents, s.reports} {
		if _, err := col.Indexes().CreateOne(ctx, byProject); err != nil {
			return fmt.Errorf("mongo index %s: %w", col.Name(), err)
		}
	}
	return nil
}

// now is the server-assigned timestamp, truncated to what BSON can hold.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func insertOne(ctx context.Context, col *mongo.Collection, doc interface{}) error {
	if _, err := col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo insert %s: %w", col.Name(), err)
	}
	return nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, id string) (*T, error) {
	var out T
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", col.Name(), err)
	}
	return &out, nil
}

// findNewestFirst returns every record whose field equals value, newest first.
func findNewestFirst[T any](ctx context.Context, col *mongo.Collection, field, value string) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := col.Find(ctx, bson.M{field: value}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", col.Name(), err)
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo decode %s: %w", col.Name(), err)
	}
	return out, nil
}

func deleteOne(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete %s: %w", col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByProject(ctx context.Context, col *mongo.Collection, projectID string) (int64, error) {
	res, err := col.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, fmt.Errorf("mongo delete %s: %w", col.Name(), err)
	}
	return res.DeletedCount, nil
}

// ── Projects ────────────────────────────────────────────────

func (s *MongoStore) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	if err := insertOne(ctx, s.projects, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *MongoStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return findOne[models.Project](ctx, s.projects, id)
}

func (s *MongoStore) ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error) {
	return findNewestFirst[models.Project](ctx, s.projects, "user_id", userID)
}

func (s *MongoStore) UpdateProject(ctx context.Context, id string, upd models.ProjectUpdate) error {
	set := bson.M{"updated_at": now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	res, err := s.projects.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mongo update projects: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteProject(ctx context.Context, id string) error {
	return deleteOne(ctx, s.projects, id)
}

// ── Research sessions ───────────────────────────────────────

func (s *MongoStore) InsertResearchSession(ctx context.Context, rs *models.ResearchSession) (*models.ResearchSession, error) {
	rs.ID = uuid.NewString()
	rs.CreatedAt = now()
	rs.UpdatedAt = rs.CreatedAt
	if err := insertOne(ctx, s.sessions, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (s *MongoStore) GetResearchSession(ctx context.Context, id string) (*models.ResearchSession, error) {
	return findOne[models.ResearchSession](ctx, s.sessions, id)
}

func (s *MongoStore) ListResearchSessions(ctx context.Context, projectID string) ([]models.ResearchSession, error) {
	return findNewestFirst[models.ResearchSession](ctx, s.sessions, "project_id", projectID)
}

func (s *MongoStore) DeleteResearchSession(ctx context.Context, id string) error {
	return deleteOne(ctx, s.sessions, id)
}

func (s *MongoStore) DeleteResearchSessionsByProject(ctx context.Context, projectID string) (int64, error) {
	return deleteByProject(ctx, s.sessions, projectID)
}

// ── Documents ───────────────────────────────────────────────

func (s *MongoStore) InsertDocument(ctx context.Context, d *models.Document) (*models.Document, error) {
	d.ID = uuid.NewString()
	d.CreatedAt = now()
	d.UpdatedAt = d.CreatedAt
	if err := insertOne(ctx, s.documents, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *MongoStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return findOne[models.Document](ctx, s.documents, id)
}

func (s *MongoStore) ListDocuments(ctx context.Context, projectID string) ([]models.Document, error) {
	return findNewestFirst[models.Document](ctx, s.documents, "project_id", projectID)
}

func (s *MongoStore) DeleteDocument(ctx context.Context, id string) error {
	return deleteOne(ctx, s.documents, id)
}

func (s *MongoStore) DeleteDocumentsByProject(ctx context.Context, projectID string) (int64, error) {
	return deleteByProject(ctx, s.documents, projectID)
}

// ── Reports ─────────────────────────────────────────────────

func (s *MongoStore) InsertReport(ctx context.Context, r *models.Report) (*models.Report, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = now()
	r.UpdatedAt = r.CreatedAt
	if err := insertOne(ctx, s.reports, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *MongoStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	return findOne[models.Report](ctx, s.reports, id)
}

func (s *MongoStore) ListReports(ctx context.Context, projectID string) ([]models.Report, error) {
	return findNewestFirst[models.Report](ctx, s.reports, "project_id", projectID)
}

func (s *MongoStore) DeleteReport(ctx context.Context, id string) error {
	return deleteOne(ctx, s.reports, id)
}

func (s *MongoStore) DeleteReportsByProject(ctx context.Context, projectID string) (int64, error) {
	return deleteByProject(ctx, s.reports, projectID)
}
