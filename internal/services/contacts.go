package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/monocle-dev/rolodex/internal/apperr"
	"github.com/monocle-dev/rolodex/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	msgContactNotFound = "Not found"
)

type ContactInput struct {
	Name       string
	Email      string
	Phone      string
	Favorite   bool
	NumberType string
	BirthDate  string
}

// ContactPatch holds the fields present in an update payload. Nil fields are
// left untouched.
type ContactPatch struct {
	Name       *string
	Email      *string
	Phone      *string
	Favorite   *bool
	NumberType *string
	BirthDate  *string
}

func (p ContactPatch) columns() map[string]interface{} {
	updates := make(map[string]interface{})

	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.Favorite != nil {
		updates["favorite"] = *p.Favorite
	}
	if p.NumberType != nil {
		updates["number_type"] = *p.NumberType
	}
	if p.BirthDate != nil {
		updates["birth_date"] = *p.BirthDate
	}

	return updates
}

type ListOptions struct {
	Page     int
	Limit    int
	Favorite *bool
}

// ContactService runs every query scoped to the owning user.
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

func (s *ContactService) List(ctx context.Context, ownerID uuid.UUID, opts ListOptions) ([]models.Contact, error) {
	if opts.Page < 1 {
		opts.Page = DefaultPage
	}
	if opts.Limit < 1 {
		opts.Limit = DefaultLimit
	}

	query := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)

	if opts.Favorite != nil {
		query = query.Where("favorite = ?", *opts.Favorite)
	}

	var contacts []models.Contact

	err := query.
		Preload("Owner", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "email")
		}).
		Order("created_at ASC, id ASC").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&contacts).Error

	if err != nil {
		return nil, storeError(err, "")
	}

	return contacts, nil
}

// Get returns the contact only if ownerID owns it; otherwise NotFound.
func (s *ContactService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact

	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&contact).Error

	if err != nil {
		return nil, storeError(err, msgContactNotFound)
	}

	return &contact, nil
}

// Create stores a contact owned by ownerID.
func (s *ContactService) Create(ctx context.Context, ownerID uuid.UUID, in ContactInput) (*models.Contact, error) {
	contact := models.Contact{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Favorite:   in.Favorite,
		NumberType: in.NumberType,
		BirthDate:  in.BirthDate,
		OwnerID:    ownerID,
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&contact).Error; err != nil {
		return nil, storeError(err, "")
	}

	return &contact, nil
}

// Update writes only the fields present in patch.
func (s *ContactService) Update(ctx context.Context, ownerID, id uuid.UUID, patch ContactPatch) (*models.Contact, error) {
	updates := patch.columns()

	if len(updates) == 0 {
		return nil, apperr.BadRequest("missing fields")
	}

	contact, err := s.Get(ctx, ownerID, id)

	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(contact).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return nil, storeError(err, msgContactNotFound)
	}

	return s.Get(ctx, ownerID, id)
}

func (s *ContactService) UpdateFavorite(ctx context.Context, ownerID, id uuid.UUID, favorite bool) (*models.Contact, error) {
	return s.Update(ctx, ownerID, id, ContactPatch{Favorite: &favorite})
}

func (s *ContactService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Contact{})

	if result.Error != nil {
		return storeError(result.Error, msgContactNotFound)
	}

	if result.RowsAffected == 0 {
		return apperr.NotFound(msgContactNotFound)
	}

	return nil
}
