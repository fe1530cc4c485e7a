package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlowQueryTracerCarriesStart(t *testing.T) {
	tracer := &slowQueryTracer{threshold: time.Hour}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", start.sql)

	assert.NotPanics(t, func() {
		tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
		tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("boom")})
		tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	})
}
