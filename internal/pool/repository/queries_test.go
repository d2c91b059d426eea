package repository

import (
	"strings"
	"testing"
)

func TestClaimLeadQueryIsConditional(t *testing.T) {
	query := strings.ToLower(claimLeadQuery)

	requiredFragments := []string{
		"where id = $1",
		"and qualification_status = $4",
		"qualified_for_user_id = $2",
		"entered_pool_at = null",
		"qualified_for_user_id = null",
		"returning",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected claim query fragment %q to be present", fragment)
		}
	}
}

func TestEscalationQueriesOnlyMatchTheirSourceState(t *testing.T) {
	toPriority := strings.ToLower(escalateToPriorityQuery)
	for _, fragment := range []string{
		"qualification_status = 'in_priority_pool'",
		"qualified_for_user_id = null",
		"entered_pool_at = $1",
		"where qualification_status = 'waiting'",
		"created_at <= $2",
	} {
		if !strings.Contains(toPriority, fragment) {
			t.Fatalf("expected priority escalation fragment %q", fragment)
		}
	}

	toGeneral := strings.ToLower(escalateToGeneralQuery)
	for _, fragment := range []string{
		"qualification_status = 'in_general_pool'",
		"entered_pool_at = $1",
		"where qualification_status = 'in_priority_pool'",
		"entered_pool_at <= $2",
	} {
		if !strings.Contains(toGeneral, fragment) {
			t.Fatalf("expected general escalation fragment %q", fragment)
		}
	}
}

func TestGetConfigurationQueryNeverInserts(t *testing.T) {
	if strings.Contains(strings.ToLower(getConfigurationQuery), "insert") {
		t.Fatal("sweep configuration read must not create the singleton")
	}
}
