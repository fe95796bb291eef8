package types

// PrefixCounter holds the per-prefix allocation sequence. Rows are created
// lazily on first allocation and never deleted; seq is only ever mutated by
// the repo's atomic increment.
type PrefixCounter struct {
	Prefix string `gorm:"primaryKey;size:6;column:prefix" json:"prefix"`
	Seq    int64  `gorm:"not null;default:0;column:seq" json:"seq"`
}

func (PrefixCounter) TableName() string { return "prefix_counter" }
