package models

import "time"

var MagazineIssueStatuses = []string{"planning", "production", "published"}

var MagazineItemStatuses = []string{"pitched", "assigned", "drafted", "edited", "final"}

const MagazineItemStatusFinal = "final"

type MagazineIssue struct {
	ID          uint       `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Title       string     `json:"title" gorm:"column:title;type:varchar(255);not null"`
	Volume      int        `json:"volume" gorm:"column:volume;not null;default:0"`
	Number      int        `json:"number" gorm:"column:number;not null;default:0"`
	PublishDate *time.Time `json:"publish_date,omitempty" gorm:"column:publish_date"`
	Status      string     `json:"status" gorm:"column:status;type:varchar(16);not null;default:'planning'"`
	SortOrder   int        `json:"sort_order" gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	Items []MagazineItem `json:"items,omitempty" gorm:"foreignKey:IssueID"`
}

func (MagazineIssue) TableName() string { return "magazine_issues" }

type MagazineItem struct {
	ID          uint       `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	IssueID     uint       `json:"issue_id" gorm:"column:issue_id;not null;index"`
	Title       string     `json:"title" gorm:"column:title;type:varchar(255);not null"`
	AuthorName  string     `json:"author_name" gorm:"column:author_name;type:varchar(255)"`
	Section     string     `json:"section" gorm:"column:section;type:varchar(64)"`
	Status      string     `json:"status" gorm:"column:status;type:varchar(16);not null;default:'pitched'"`
	WordCount   int        `json:"word_count" gorm:"column:word_count;not null;default:0"`
	PageStart   *int       `json:"page_start,omitempty" gorm:"column:page_start"`
	Notes       string     `json:"notes" gorm:"column:notes;type:text"`
	OwnerID     *uint      `json:"owner_id,omitempty" gorm:"column:owner_id;index"`
	SortOrder   int        `json:"sort_order" gorm:"column:sort_order;not null;default:0"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (MagazineItem) TableName() string { return "magazine_items" }
