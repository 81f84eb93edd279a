package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
)

func collectArgs() (func(v any) string, *[]any) {
	var args []any
	return func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}, &args
}

func TestOrderUpdateAssignments_Empty(t *testing.T) {
	arg, args := collectArgs()

	set := orderUpdateAssignments(domain.OrderUpdate{}, arg)
	assert.Empty(t, set)
	assert.Empty(t, *args)
}

func TestOrderUpdateAssignments_PartialFields(t *testing.T) {
	arg, args := collectArgs()

	status := domain.StatusReady
	ready := true
	notes := "urgent"
	set := orderUpdateAssignments(domain.OrderUpdate{
		Status: &status,
		Ready:  &ready,
		Notes:  &notes,
	}, arg)

	require.Equal(t, []string{"status = $1", "notes = $2", "ready = $3"}, set)
	assert.Equal(t, []any{status, notes, ready}, *args)
}

func TestOrderUpdateAssignments_DeterministicOrder(t *testing.T) {
	status := domain.StatusCancelled
	customer := "Acme"

	arg1, _ := collectArgs()
	first := orderUpdateAssignments(domain.OrderUpdate{Status: &status, Customer: &customer}, arg1)
	arg2, _ := collectArgs()
	second := orderUpdateAssignments(domain.OrderUpdate{Status: &status, Customer: &customer}, arg2)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"customer = $1", "status = $2"}, first)
}
