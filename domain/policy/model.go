package policy

import (
	"time"

	"github.com/policydesk/admin-api/utils"
)

// Type is the policy category
type Type string

const (
	TypeTermsConditions    Type = "terms_conditions"
	TypePrivacyPolicy      Type = "privacy_policy"
	TypeClientPolicy       Type = "client_policy"
	TypeRefundPolicy       Type = "refund_policy"
	TypeShippingPolicy     Type = "shipping_policy"
	TypeCancellationPolicy Type = "cancellation_policy"
)

// Types lists every policy type in display order
var Types = []Type{
	TypeTermsConditions,
	TypePrivacyPolicy,
	TypeClientPolicy,
	TypeRefundPolicy,
	TypeShippingPolicy,
	TypeCancellationPolicy,
}

var typeLabels = map[Type]string{
	TypeTermsConditions:    "Terms & Conditions",
	TypePrivacyPolicy:      "Privacy Policy",
	TypeClientPolicy:       "Client Policy",
	TypeRefundPolicy:       "Refund Policy",
	TypeShippingPolicy:     "Shipping Policy",
	TypeCancellationPolicy: "Cancellation Policy",
}

// Label returns the display name, or the raw value for unknown types
func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Status is the publication lifecycle state
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Statuses lists every status in lifecycle order
var Statuses = []Status{StatusDraft, StatusPublished, StatusArchived}

var statusLabels = map[Status]string{
	StatusDraft:     "Draft",
	StatusPublished: "Published",
	StatusArchived:  "Archived",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// DefaultLanguage is applied when a document is created without one
const DefaultLanguage = "en"

// AdminRef is the embedded view of the administrator who last touched a document
type AdminRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Policy is a stored policy document
type Policy struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content"`
	Type            Type       `json:"type"`
	Status          Status     `json:"status"`
	Language        string     `json:"language"`
	MetaTitle       string     `json:"metaTitle"`
	MetaDescription string     `json:"metaDescription"`
	Keywords        []string   `json:"keywords"`
	LastUpdatedBy   *AdminRef  `json:"lastUpdatedBy"`
	PublishedAt     *time.Time `json:"publishedAt"`
	IsActive        bool       `json:"isActive"`
	Views           int64      `json:"views"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CreateInput is the payload accepted by Create
type CreateInput struct {
	Title           string   `json:"title" validate:"notblank,max=200"`
	Slug            string   `json:"slug"`
	Content         string   `json:"content" validate:"notblank"`
	Type            Type     `json:"type" validate:"required,oneof=terms_conditions privacy_policy client_policy refund_policy shipping_policy cancellation_policy"`
	Status          Status   `json:"status" validate:"omitempty,oneof=draft published archived"`
	Language        string   `json:"language" validate:"omitempty,max=10"`
	MetaTitle       string   `json:"metaTitle" validate:"max=150"`
	MetaDescription string   `json:"metaDescription" validate:"max=300"`
	Keywords        []string `json:"keywords"`
}

func (CreateInput) ValidationMessages() map[string]string {
	return inputMessages
}

// UpdateInput carries a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Title           *string   `json:"title" validate:"omitnil,notblank,max=200"`
	Content         *string   `json:"content" validate:"omitnil,notblank"`
	Type            *Type     `json:"type" validate:"omitnil,oneof=terms_conditions privacy_policy client_policy refund_policy shipping_policy cancellation_policy"`
	Status          *Status   `json:"status" validate:"omitnil,oneof=draft published archived"`
	Language        *string   `json:"language" validate:"omitnil,notblank,max=10"`
	MetaTitle       *string   `json:"metaTitle" validate:"omitnil,max=150"`
	MetaDescription *string   `json:"metaDescription" validate:"omitnil,max=300"`
	Keywords        *[]string `json:"keywords"`
}

func (UpdateInput) ValidationMessages() map[string]string {
	return inputMessages
}

var inputMessages = map[string]string{
	"Title.notblank":      "Title is required",
	"Title.max":           "Title cannot exceed 200 characters",
	"Content.notblank":    "Content is required",
	"Type.required":       "Policy type is required",
	"Type.oneof":          "Invalid policy type",
	"Status.oneof":        "Invalid status",
	"Language.notblank":   "Language cannot be empty",
	"Language.max":        "Language cannot exceed 10 characters",
	"MetaTitle.max":       "Meta title cannot exceed 150 characters",
	"MetaDescription.max": "Meta description cannot exceed 300 characters",
}

// Filter narrows List, QuickSearch and ListByType. Zero values match everything.
type Filter struct {
	Type   Type
	Status Status
	Search string
}

// Sort is a whitelisted ordering
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort orders newest first
var DefaultSort = Sort{Field: "createdAt", Desc: true}

var sortFields = map[string]bool{
	"createdAt":   true,
	"updatedAt":   true,
	"publishedAt": true,
	"title":       true,
	"views":       true,
	"type":        true,
	"status":      true,
}

// ParseSort reads "field" or "-field". Unknown fields fall back to DefaultSort.
func ParseSort(s string) Sort {
	desc := false
	if len(s) > 0 && s[0] == '-' {
		desc = true
		s = s[1:]
	}
	if !sortFields[s] {
		return DefaultSort
	}
	return Sort{Field: s, Desc: desc}
}

// Query is what the repository needs to fetch one page
type Query struct {
	Filter
	Sort   Sort
	Limit  int // 0 means no limit
	Offset int
}

// ListResult is one page of documents
type ListResult struct {
	Policies   []Policy         `json:"policies"`
	Pagination utils.Pagination `json:"pagination"`
}

// BulkResult reports how many ids named an active document and how many changed status
type BulkResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// StatusCount is one (type, status) bucket of active documents
type StatusCount struct {
	Type   Type   `db:"type"`
	Status Status `db:"status"`
	Count  int    `db:"count"`
	Views  int64  `db:"views"`
}

// TypeStats summarises the active documents of one type
type TypeStats struct {
	Type        Type   `json:"type"`
	TypeDisplay string `json:"typeDisplay"`
	Total       int    `json:"total"`
	Published   int    `json:"published"`
	Draft       int    `json:"draft"`
	Archived    int    `json:"archived"`
}

// Summary totals across all active documents
type Summary struct {
	TotalPolicies  int   `json:"totalPolicies"`
	TotalPublished int   `json:"totalPublished"`
	TotalDraft     int   `json:"totalDraft"`
	TotalArchived  int   `json:"totalArchived"`
	TotalViews     int64 `json:"totalViews"`
}

// Stats is the response of the stats summary endpoint
type Stats struct {
	Stats []TypeStats `json:"stats"`
	Total Summary     `json:"total"`
}

// TypeCount is the number of active documents of one type
type TypeCount struct {
	Type  Type `json:"type"`
	Count int  `json:"count"`
}

// Dashboard is the landing-page aggregate for the admin panel
type Dashboard struct {
	Summary        Summary     `json:"summary"`
	RecentPolicies []Policy    `json:"recentPolicies"`
	PoliciesByType []TypeCount `json:"policiesByType"`
}

// Option is a value/label pair for select inputs
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ListParams are the raw list query parameters
type ListParams struct {
	Type   Type
	Status Status
	Search string
	Page   int
	Limit  int
	Sort   string
}

// TypeOptions returns every type with its display label
func TypeOptions() []Option {
	opts := make([]Option, 0, len(Types))
	for _, t := range Types {
		opts = append(opts, Option{Value: string(t), Label: t.Label()})
	}
	return opts
}

// StatusOptions returns every status with its display label
func StatusOptions() []Option {
	opts := make([]Option, 0, len(Statuses))
	for _, s := range Statuses {
		opts = append(opts, Option{Value: string(s), Label: s.Label()})
	}
	return opts
}
