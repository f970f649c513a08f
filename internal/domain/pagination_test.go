package domain_test

import (
	"math"
	"testing"

	"go-jobboard-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   domain.PageRequest
		want domain.PageRequest
	}{
		{"zero value", domain.PageRequest{}, domain.PageRequest{Page: 1, PageSize: domain.DefaultPageSize}},
		{"negative", domain.PageRequest{Page: -3, PageSize: -1}, domain.PageRequest{Page: 1, PageSize: domain.DefaultPageSize}},
		{"oversized page", domain.PageRequest{Page: 2, PageSize: 1000}, domain.PageRequest{Page: 2, PageSize: domain.MaxPageSize}},
		{"huge page", domain.PageRequest{Page: math.MaxInt, PageSize: 10}, domain.PageRequest{Page: domain.MaxPage, PageSize: 10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got.Offset(), 0)
		})
	}
}
