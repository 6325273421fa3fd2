package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationApplicationStatus   NotificationType = "application_status"
	NotificationMessageReceived     NotificationType = "message_received"
	NotificationJobPosted           NotificationType = "job_posted"
	NotificationApplicationReceived NotificationType = "application_received"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationApplicationStatus, NotificationMessageReceived, NotificationJobPosted, NotificationApplicationReceived:
		return true
	}
	return false
}

type RelatedKind string

const (
	RelatedApplication RelatedKind = "application"
	RelatedJob         RelatedKind = "job"
	RelatedMessage     RelatedKind = "message"
)

// RelatedRef points a notification at the entity it is about. It is stored
// as one column in the form "kind:id" and is NULL when empty.
type RelatedRef struct {
	Kind RelatedKind `json:"kind"`
	ID   uint        `json:"id"`
}

func ApplicationRef(id uint) RelatedRef { return RelatedRef{Kind: RelatedApplication, ID: id} }
func JobRef(id uint) RelatedRef         { return RelatedRef{Kind: RelatedJob, ID: id} }
func MessageRef(id uint) RelatedRef     { return RelatedRef{Kind: RelatedMessage, ID: id} }

func (r RelatedRef) IsZero() bool {
	return r.Kind == "" || r.ID == 0
}

func (r RelatedRef) String() string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// ParseRelatedRef is the inverse of String. An empty input yields the zero ref.
func ParseRelatedRef(s string) (RelatedRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RelatedRef{}, nil
	}
	kind, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return RelatedRef{}, fmt.Errorf("invalid related reference %q", s)
	}
	switch RelatedKind(kind) {
	case RelatedApplication, RelatedJob, RelatedMessage:
	default:
		return RelatedRef{}, fmt.Errorf("unknown related kind %q", kind)
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return RelatedRef{}, fmt.Errorf("invalid related id %q", rawID)
	}
	return RelatedRef{Kind: RelatedKind(kind), ID: uint(id)}, nil
}

func (RelatedRef) GormDataType() string {
	return "string"
}

func (r RelatedRef) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return r.String(), nil
}

func (r *RelatedRef) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = RelatedRef{}
		return nil
	case string:
		ref, err := ParseRelatedRef(v)
		if err != nil {
			return err
		}
		*r = ref
		return nil
	case []byte:
		ref, err := ParseRelatedRef(string(v))
		if err != nil {
			return err
		}
		*r = ref
		return nil
	default:
		return fmt.Errorf("unsupported related reference type %T", value)
	}
}

func (r RelatedRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	type plain RelatedRef
	return json.Marshal(plain(r))
}

func (r *RelatedRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RelatedRef{}
		return nil
	}
	type plain RelatedRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RelatedRef(p)
	return nil
}

// NotificationData is the structured payload attached to a notification.
type NotificationData struct {
	JobTitle          string            `json:"job_title,omitempty"`
	CompanyName       string            `json:"company_name,omitempty"`
	ApplicationStatus ApplicationStatus `json:"application_status,omitempty"`
	SenderName        string            `json:"sender_name,omitempty"`
	ApplicantName     string            `json:"applicant_name,omitempty"`
	ApprovalMessage   string            `json:"approval_message,omitempty"`
}

type Notification struct {
	ID        uint                                 `gorm:"primaryKey;column:id" json:"id"`
	UserID    uint                                 `gorm:"column:user_id;not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	Type      NotificationType                     `gorm:"column:type;size:40;not null" json:"type"`
	Title     string                               `gorm:"column:title;size:200;not null" json:"title"`
	Message   string                               `gorm:"column:message;type:text;not null" json:"message"`
	Related   RelatedRef                           `gorm:"column:related;size:64" json:"related"`
	Data      datatypes.JSONType[NotificationData] `gorm:"column:data" json:"data"`
	IsRead    bool                                 `gorm:"column:is_read;not null;index" json:"is_read"`
	ReadAt    *time.Time                           `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time                            `gorm:"column:created_at;index:idx_notifications_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time                            `gorm:"column:updated_at" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
