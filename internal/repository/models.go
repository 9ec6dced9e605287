// Package repository persists analysis reports so size changes can be
// tracked across builds.
package repository

import "time"

// Report is one stored analysis run.
type Report struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	// BinaryPath is the analyzed input as the user named it.
	BinaryPath string `gorm:"size:1024;index"`
	// Analysis is the analysis name: top, dominators, paths, monos,
	// garbage, or diff.
	Analysis string `gorm:"size:32;index"`
	// Format is the output format the report was rendered in.
	Format string `gorm:"size:8"`
	// Output is the rendered analysis output.
	Output string `gorm:"type:text"`

	// GraphSize is the byte budget of the analyzed graph.
	GraphSize uint32
	// ItemCount is the number of items in the graph, meta root included.
	ItemCount int
	// DurationMs is the parse-plus-analysis wall time in milliseconds.
	DurationMs int64
}

// TableName names the table explicitly so renaming the struct stays safe.
func (Report) TableName() string { return "reports" }
