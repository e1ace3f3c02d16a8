package types

import "time"

type Category struct {
	ID          int64      `db:"id" json:"id"`
	ParentID    *int64     `db:"parent_id" json:"parent_id"`
	Name        string     `db:"name" json:"name"`
	Slug        string     `db:"slug" json:"slug"`
	Description *string    `db:"description" json:"description,omitempty"`
	SortOrder   int        `db:"sort_order" json:"sort_order"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

func (c *Category) TreeID() int64        { return c.ID }
func (c *Category) TreeParentID() *int64 { return c.ParentID }

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

type CategorySuggestion struct {
	ID          int64            `db:"id" json:"id"`
	UserID      int64            `db:"user_id" json:"user_id"`
	Name        string           `db:"name" json:"name"`
	Description *string          `db:"description" json:"description,omitempty"`
	ParentID    *int64           `db:"parent_id" json:"parent_id"`
	Status      SuggestionStatus `db:"status" json:"status"`
	ApprovedBy  *int64           `db:"approved_by" json:"approved_by,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// CategorySuggestionDetail joins the submitting user's display fields.
type CategorySuggestionDetail struct {
	CategorySuggestion
	UserName  *string `db:"user_name" json:"user_name,omitempty"`
	UserEmail *string `db:"user_email" json:"user_email,omitempty"`
}
