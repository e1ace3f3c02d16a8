package types

import "time"

type ListingStatus string

const (
	ListingDraft     ListingStatus = "draft"
	ListingPending   ListingStatus = "pending_approval"
	ListingApproved  ListingStatus = "approved"
	ListingRejected  ListingStatus = "rejected"
	ListingExpired   ListingStatus = "expired"
	ListingSuspended ListingStatus = "suspended"
)

type Listing struct {
	ID               int64         `db:"id" json:"id"`
	UserID           int64         `db:"user_id" json:"user_id"`
	CategoryID       int64         `db:"category_id" json:"category_id"`
	LocationID       *int64        `db:"location_id" json:"location_id"`
	Title            string        `db:"title" json:"title"`
	Slug             string        `db:"slug" json:"slug"`
	Description      *string       `db:"description" json:"description,omitempty"`
	ShortDescription *string       `db:"short_description" json:"short_description,omitempty"`
	Address          *string       `db:"address" json:"address,omitempty"`
	Phone            *string       `db:"phone" json:"phone,omitempty"`
	Whatsapp         *string       `db:"whatsapp" json:"whatsapp,omitempty"`
	Email            *string       `db:"email" json:"email,omitempty"`
	Website          *string       `db:"website" json:"website,omitempty"`
	Status           ListingStatus `db:"status" json:"status"`
	Featured         bool          `db:"featured" json:"featured"`
	ViewCount        int64         `db:"view_count" json:"view_count"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
	DeletedAt        *time.Time    `db:"deleted_at" json:"-"`
}

// ListingDetail joins display names from the taxonomy tables and, for the
// admin approval queue, the owner's identity.
type ListingDetail struct {
	Listing
	CategoryName *string `db:"category_name" json:"category_name,omitempty"`
	LocationName *string `db:"location_name" json:"location_name,omitempty"`
	UserName     *string `db:"user_name" json:"user_name,omitempty"`
	UserEmail    *string `db:"user_email" json:"user_email,omitempty"`
}

type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

type Subscription struct {
	ID        int64              `db:"id"`
	UserID    int64              `db:"user_id"`
	Status    SubscriptionStatus `db:"status"`
	EndsAt    *time.Time         `db:"ends_at"`
	CreatedAt time.Time          `db:"created_at"`
	UpdatedAt time.Time          `db:"updated_at"`
	DeletedAt *time.Time         `db:"deleted_at"`
}
