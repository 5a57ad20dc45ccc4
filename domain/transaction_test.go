package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := map[TransactionStatus][]TransactionStatus{
		TransactionStatusPending:  {TransactionStatusApproved, TransactionStatusRejected, TransactionStatusCancelled},
		TransactionStatusApproved: {TransactionStatusCompleted, TransactionStatusCancelled},
	}

	all := []TransactionStatus{
		TransactionStatusPending,
		TransactionStatusApproved,
		TransactionStatusRejected,
		TransactionStatusCompleted,
		TransactionStatusCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	for _, terminal := range []TransactionStatus{
		TransactionStatusRejected,
		TransactionStatusCompleted,
		TransactionStatusCancelled,
	} {
		assert.False(t, CanTransition(terminal, TransactionStatusPending), "%s should be terminal", terminal)
		assert.False(t, CanTransition(terminal, TransactionStatusApproved), "%s should be terminal", terminal)
	}
}
