package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/rolodex/internal/apperr"
	"github.com/monocle-dev/rolodex/internal/models"
	"github.com/monocle-dev/rolodex/internal/services"
	"github.com/monocle-dev/rolodex/internal/types"
	"github.com/monocle-dev/rolodex/internal/utils"
	"github.com/monocle-dev/rolodex/internal/validation"
)

type CreateContactRequest struct {
	Name       string      `json:"name" binding:"required,alphanum,min=3,max=30"`
	Email      string      `json:"email" binding:"required,emailaddr"`
	Phone      types.Phone `json:"phone" binding:"required,min=10,max=15"`
	Favorite   bool        `json:"favorite"`
	NumberType string      `json:"number_type" binding:"required,oneof=home work friend"`
	BirthDate  string      `json:"birth_date" binding:"required,birthdate"`
}

// UpdateContactRequest validates only the fields that are present.
type UpdateContactRequest struct {
	Name       *string      `json:"name" binding:"omitempty,alphanum,min=3,max=30"`
	Email      *string      `json:"email" binding:"omitempty,emailaddr"`
	Phone      *types.Phone `json:"phone" binding:"omitempty,min=10,max=15"`
	Favorite   *bool        `json:"favorite"`
	NumberType *string      `json:"number_type" binding:"omitempty,oneof=home work friend"`
	BirthDate  *string      `json:"birth_date" binding:"omitempty,birthdate"`
}

type UpdateFavoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

type ListContactsQuery struct {
	Page     *int  `form:"page" binding:"omitempty,min=1"`
	Limit    *int  `form:"limit" binding:"omitempty,min=1,max=100"`
	Favorite *bool `form:"favorite"`
}

type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) List(ctx *gin.Context) {
	ownerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		_ = ctx.Error(apperr.Unauthorized(""))
		return
	}

	var query ListContactsQuery

	if err := validation.BindQuery(ctx, &query); err != nil {
		_ = ctx.Error(err)
		return
	}

	opts := services.ListOptions{
		Page:     services.DefaultPage,
		Limit:    services.DefaultLimit,
		Favorite: query.Favorite,
	}
	if query.Page != nil {
		opts.Page = *query.Page
	}
	if query.Limit != nil {
		opts.Limit = *query.Limit
	}

	contacts, err := h.contacts.List(ctx.Request.Context(), ownerID, opts)

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	response := make([]types.ContactListItem, 0, len(contacts))

	for _, contact := range contacts {
		response = append(response, types.ContactListItem{
			ID:         contact.ID.String(),
			Name:       contact.Name,
			Email:      contact.Email,
			Phone:      contact.Phone,
			Favorite:   contact.Favorite,
			NumberType: contact.NumberType,
			BirthDate:  contact.BirthDate,
			Owner: types.OwnerSummary{
				ID:    contact.Owner.ID.String(),
				Name:  contact.Owner.Name,
				Email: contact.Owner.Email,
			},
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *ContactHandler) Get(ctx *gin.Context) {
	ownerID, id, ok := scope(ctx)
	if !ok {
		return
	}

	contact, err := h.contacts.Get(ctx.Request.Context(), ownerID, id)

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, contactResponse(contact))
}

func (h *ContactHandler) Create(ctx *gin.Context) {
	ownerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		_ = ctx.Error(apperr.Unauthorized(""))
		return
	}

	var body CreateContactRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		_ = ctx.Error(err)
		return
	}

	contact, err := h.contacts.Create(ctx.Request.Context(), ownerID, services.ContactInput{
		Name:       body.Name,
		Email:      body.Email,
		Phone:      string(body.Phone),
		Favorite:   body.Favorite,
		NumberType: body.NumberType,
		BirthDate:  body.BirthDate,
	})

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, contactResponse(contact))
}

func (h *ContactHandler) Update(ctx *gin.Context) {
	ownerID, id, ok := scope(ctx)
	if !ok {
		return
	}

	var body UpdateContactRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		_ = ctx.Error(err)
		return
	}

	patch := services.ContactPatch{
		Name:       body.Name,
		Email:      body.Email,
		Favorite:   body.Favorite,
		NumberType: body.NumberType,
		BirthDate:  body.BirthDate,
	}
	if body.Phone != nil {
		phone := string(*body.Phone)
		patch.Phone = &phone
	}

	contact, err := h.contacts.Update(ctx.Request.Context(), ownerID, id, patch)

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, contactResponse(contact))
}

func (h *ContactHandler) UpdateFavorite(ctx *gin.Context) {
	ownerID, id, ok := scope(ctx)
	if !ok {
		return
	}

	var body UpdateFavoriteRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		_ = ctx.Error(err)
		return
	}

	contact, err := h.contacts.UpdateFavorite(ctx.Request.Context(), ownerID, id, *body.Favorite)

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, contactResponse(contact))
}

func (h *ContactHandler) Delete(ctx *gin.Context) {
	ownerID, id, ok := scope(ctx)
	if !ok {
		return
	}

	if err := h.contacts.Delete(ctx.Request.Context(), ownerID, id); err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Delete success"})
}

// scope returns the caller and the validated path id, recording an error on
// the context when either is missing.
func scope(ctx *gin.Context) (ownerID, id uuid.UUID, ok bool) {
	ownerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		_ = ctx.Error(apperr.Unauthorized(""))
		return uuid.Nil, uuid.Nil, false
	}

	id, err = utils.GetPathID(ctx)

	if err != nil {
		_ = ctx.Error(apperr.BadRequest(ctx.Param("id") + " is not valid id"))
		return uuid.Nil, uuid.Nil, false
	}

	return ownerID, id, true
}

func contactResponse(contact *models.Contact) types.ContactResponse {
	return types.ContactResponse{
		ID:         contact.ID.String(),
		Name:       contact.Name,
		Email:      contact.Email,
		Phone:      contact.Phone,
		Favorite:   contact.Favorite,
		NumberType: contact.NumberType,
		BirthDate:  contact.BirthDate,
		Owner:      contact.OwnerID.String(),
		CreatedAt:  &contact.CreatedAt,
		UpdatedAt:  &contact.UpdatedAt,
	}
}
