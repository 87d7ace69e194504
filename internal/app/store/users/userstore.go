package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/tripdesk/tripdesk/internal/app/policy/userpolicy"
	"github.com/tripdesk/tripdesk/internal/app/system/normalize"
	"github.com/tripdesk/tripdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errMissingID      = errors.New("user id is required")
	errBadRole        = errors.New(`role must be one of "SuperAdmin"|"Admin"|"Staff"|"Partner"|"Agent"|"User"`)
)

// GetByID loads a user by their identity-provider uid.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		return models.User{}, errMissingID
	}
	u.Email = normalize.Email(u.Email)

	role, ok := userpolicy.Parse(u.Role)
	if !ok {
		return models.User{}, errBadRole
	}
	u.Role = string(role)

	now := time.Now().UTC()
	if u.Metadata.CreatedAt.IsZero() {
		u.Metadata.CreatedAt = now
	}
	if u.Metadata.LastLoginAt.IsZero() {
		u.Metadata.LastLoginAt = now
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns up to limit users, newest first.
func (s *Store) List(ctx context.Context, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "metadata.created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ProfilePatch holds a field-by-field profile merge: nil fields are
// left unchanged.
type ProfilePatch struct {
	FirstName   *string
	LastName    *string
	Gender      *string
	DateOfBirth *string
	Mobile      *string
	Avatar      *string
}

// Update holds the admin-mutable fields. Nil fields are left unchanged.
type Update struct {
	Role       *string
	Category   *string
	IsActive   *bool
	Profile    *ProfilePatch
	AssignedBy *string // set together with Role
}

// Apply writes the non-nil fields of upd to the record.
// Returns mongo.ErrNoDocuments if no record matched.
func (s *Store) Apply(ctx context.Context, id string, upd Update) error {
	set := bson.M{}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.AssignedBy != nil {
		set["assigned_by"] = *upd.AssignedBy
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.IsActive != nil {
		set["metadata.is_active"] = *upd.IsActive
	}
	if p := upd.Profile; p != nil {
		if p.FirstName != nil {
			set["profile.first_name"] = *p.FirstName
		}
		if p.LastName != nil {
			set["profile.last_name"] = *p.LastName
		}
		if p.Gender != nil {
			set["profile.gender"] = *p.Gender
		}
		if p.DateOfBirth != nil {
			set["profile.date_of_birth"] = *p.DateOfBirth
		}
		if p.Mobile != nil {
			set["profile.mobile"] = *p.Mobile
		}
		if p.Avatar != nil {
			set["profile.avatar"] = *p.Avatar
		}
	}
	if len(set) == 0 {
		return nil
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete permanently removes a user record. Returns the number of
// documents deleted (0 or 1). No tombstone is kept.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// TouchLogin records a successful sign-in: last_login_at is always
// advanced; email is refreshed from the identity provider; avatar is
// written only when non-empty. Role is deliberately never touched here.
func (s *Store) TouchLogin(ctx context.Context, id, email, avatar string) error {
	set := bson.M{
		"metadata.last_login_at": time.Now().UTC(),
	}
	if email != "" {
		set["email"] = normalize.Email(email)
	}
	if avatar != "" {
		set["profile.avatar"] = avatar
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// EnsureIndexes creates the unique email index and the created_at sort
// index used by List.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email"),
		},
		{
			Keys:    bson.D{{Key: "metadata.created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
