package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(fmt.Errorf("plain")))
}

func TestMarshalHelpers(t *testing.T) {
	assert.Nil(t, marshalMap(nil))
	assert.JSONEq(t, `{"k":"v"}`, string(marshalMap(map[string]string{"k": "v"})))

	assert.Nil(t, nullTime(time.Time{}))
	now := time.Now()
	assert.Equal(t, now, nullTime(now))

	raw, err := marshalTasks(nil)
	assert.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
