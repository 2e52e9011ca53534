package envelope

import (
	"time"

	"ecommerce-api/internal/repository"
)

// Meta keys
const (
	MetaMessage    = "message"
	MetaTimestamp  = "timestamp"
	MetaPagination = "pagination"
)

// Envelope is the wire shape of a successful response
type Envelope struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// Pagination describes the page returned by a listing
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	PageCount int   `json:"pageCount"`
	Total     int64 `json:"total"`
}

// Builder assembles an Envelope. Every method returns a new builder.
type Builder struct {
	data interface{}
	meta map[string]interface{}
}

// New starts an envelope around data
func New(data interface{}) Builder {
	return Builder{data: data}
}

// WithMessage adds meta.message and meta.timestamp
func (b Builder) WithMessage(message string, ts time.Time) Builder {
	return b.WithMeta(MetaMessage, message).WithMeta(MetaTimestamp, ts.UTC())
}

// WithMeta adds one meta entry
func (b Builder) WithMeta(key string, value interface{}) Builder {
	meta := make(map[string]interface{}, len(b.meta)+1)
	for k, v := range b.meta {
		meta[k] = v
	}
	meta[key] = value
	return Builder{data: b.data, meta: meta}
}

// WithPagination adds meta.pagination
func (b Builder) WithPagination(p Pagination) Builder {
	return b.WithMeta(MetaPagination, p)
}

// Build returns the finished envelope
func (b Builder) Build() Envelope {
	meta := make(map[string]interface{}, len(b.meta))
	for k, v := range b.meta {
		meta[k] = v
	}
	if len(meta) == 0 {
		meta = nil
	}
	return Envelope{Data: b.data, Meta: meta}
}

// Deleted is the fixed acknowledgement for deletions
func Deleted(message string, ts time.Time) Envelope {
	return New(nil).WithMessage(message, ts).Build()
}

// PaginationOf converts a repository page
func PaginationOf[T any](p *repository.Page[T]) Pagination {
	return Pagination{
		Page:      p.Page,
		PageSize:  p.PageSize,
		PageCount: p.PageCount(),
		Total:     p.Total,
	}
}
