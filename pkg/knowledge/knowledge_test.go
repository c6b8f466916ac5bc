package knowledge

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	kb := New()

	if len(kb) != 10 {
		t.Fatalf("Expected 10 categories, got %d", len(kb))
	}
	for _, c := range Categories() {
		entries, ok := kb[c]
		if !ok {
			t.Errorf("Missing category %s", c)
			continue
		}
		if entries == nil || len(entries) != 0 {
			t.Errorf("Category %s should be an empty non-nil map, got %v", c, entries)
		}
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cats := Categories()
	cats[0] = "mutated"

	if Categories()[0] != CategoryOverview {
		t.Error("Categories should return a copy")
	}
}

func TestMerge(t *testing.T) {
	t.Run("sets exactly the updated key", func(t *testing.T) {
		kb := New()
		kb[CategorySchedule]["deadline"] = "2024-06-01"

		applied := kb.Merge(Update{"risk": {"budget_overrun": "high"}})

		if got := kb[CategoryRisk]["budget_overrun"]; got != "high" {
			t.Errorf("Expected risk.budget_overrun=high, got %q", got)
		}
		if len(kb[CategoryRisk]) != 1 {
			t.Errorf("Expected 1 risk entry, got %d", len(kb[CategoryRisk]))
		}
		if kb[CategorySchedule]["deadline"] != "2024-06-01" {
			t.Error("Other categories should be untouched")
		}
		for _, c := range Categories() {
			if c != CategoryRisk && c != CategorySchedule && len(kb[c]) != 0 {
				t.Errorf("Category %s should still be empty, got %v", c, kb[c])
			}
		}
		if applied.Len() != 1 || applied["risk"]["budget_overrun"] != "high" {
			t.Errorf("Unexpected applied update: %v", applied)
		}
	})

	t.Run("last write wins per key", func(t *testing.T) {
		kb := New()
		kb[CategoryCost]["budget"] = "100k"
		kb[CategoryCost]["currency"] = "EUR"

		kb.Merge(Update{"cost": {"budget": "120k"}})

		if kb[CategoryCost]["budget"] != "120k" {
			t.Errorf("Expected budget overwritten, got %q", kb[CategoryCost]["budget"])
		}
		if kb[CategoryCost]["currency"] != "EUR" {
			t.Error("Keys absent from the update should be kept")
		}
	})

	t.Run("unknown category is ignored", func(t *testing.T) {
		kb := New()
		before := kb.Clone()

		applied := kb.Merge(Update{"budget": {"total": "1M"}})

		if _, ok := kb["budget"]; ok {
			t.Error("Unknown category should not be admitted")
		}
		if !kb.Equal(before) {
			t.Error("Knowledge base should be unchanged")
		}
		if len(applied) != 0 {
			t.Errorf("Expected nothing applied, got %v", applied)
		}
	})

	t.Run("legacy category name is folded", func(t *testing.T) {
		kb := New()
		kb.Merge(Update{"project_overview": {"name": "Apollo"}})

		if kb[CategoryOverview]["name"] != "Apollo" {
			t.Errorf("Expected overview.name=Apollo, got %v", kb[CategoryOverview])
		}
		if _, ok := kb["project_overview"]; ok {
			t.Error("Legacy name should not become a category")
		}
	})

	t.Run("current name wins over legacy name", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			kb := New()
			applied := kb.Merge(Update{
				"overview":         {"name": "A"},
				"project_overview": {"name": "B", "sponsor": "CFO"},
			})
			if kb[CategoryOverview]["name"] != "A" {
				t.Fatalf("Expected overview.name=A, got %q", kb[CategoryOverview]["name"])
			}
			if kb[CategoryOverview]["sponsor"] != "CFO" {
				t.Fatalf("Expected legacy-only key kept, got %v", kb[CategoryOverview])
			}
			if applied[CategoryOverview]["name"] != "A" {
				t.Fatalf("Expected applied overview.name=A, got %v", applied)
			}
		}
	})

	t.Run("empty value is stored as-is", func(t *testing.T) {
		kb := New()
		kb[CategoryScope]["mvp"] = "login"
		kb.Merge(Update{"scope": {"mvp": ""}})

		v, ok := kb[CategoryScope]["mvp"]
		if !ok || v != "" {
			t.Errorf("Expected empty string stored, got %q (present=%v)", v, ok)
		}
	})
}

func TestNormalize(t *testing.T) {
	t.Run("creates missing categories and drops unknown", func(t *testing.T) {
		kb := KnowledgeBase{
			"risk":  {"a": "b"},
			"notes": {"x": "y"},
		}
		kb.Normalize()

		if len(kb) != 10 {
			t.Fatalf("Expected 10 categories, got %d", len(kb))
		}
		if _, ok := kb["notes"]; ok {
			t.Error("Unknown category should be dropped")
		}
		if kb[CategoryRisk]["a"] != "b" {
			t.Error("Existing facts should be kept")
		}
	})

	t.Run("legacy overview does not overwrite current keys", func(t *testing.T) {
		kb := KnowledgeBase{
			"overview":         {"name": "current"},
			"project_overview": {"name": "legacy", "sponsor": "CFO"},
		}
		kb.Normalize()

		if kb[CategoryOverview]["name"] != "current" {
			t.Errorf("Expected current value to win, got %q", kb[CategoryOverview]["name"])
		}
		if kb[CategoryOverview]["sponsor"] != "CFO" {
			t.Error("Legacy-only keys should be folded in")
		}
	})
}

func TestClone(t *testing.T) {
	kb := New()
	kb[CategoryRisk]["k"] = "v"

	clone := kb.Clone()
	clone[CategoryRisk]["k"] = "changed"

	if kb[CategoryRisk]["k"] != "v" {
		t.Error("Clone should be deep")
	}
}

func TestEqual(t *testing.T) {
	a := New()
	b := KnowledgeBase{"risk": {}}
	if !a.Equal(b) {
		t.Error("Absent and empty categories should compare equal")
	}

	b["risk"]["k"] = "v"
	if a.Equal(b) {
		t.Error("Different facts should not compare equal")
	}
}

func TestContext(t *testing.T) {
	kb := New()
	kb[CategoryStakeholder]["sponsor"] = "CFO"
	kb[CategoryOverview]["name"] = "Apollo <v2> & co"

	ctx := kb.Context()

	if !strings.HasPrefix(ctx, "{\n  \"overview\": {\n    \"name\": \"Apollo <v2> & co\"\n  },\n  \"scope\": {},") {
		t.Errorf("Unexpected context prefix:\n%s", ctx)
	}
	if !strings.HasSuffix(ctx, "\"stakeholder\": {\n    \"sponsor\": \"CFO\"\n  }\n}") {
		t.Errorf("Unexpected context suffix:\n%s", ctx)
	}

	order := []int{}
	for _, c := range Categories() {
		order = append(order, strings.Index(ctx, `"`+c+`"`))
	}
	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Fatalf("Categories out of canonical order in:\n%s", ctx)
		}
	}

	var decoded map[string]map[string]string
	if err := json.Unmarshal([]byte(ctx), &decoded); err != nil {
		t.Fatalf("Context is not valid JSON: %v", err)
	}
	if decoded["stakeholder"]["sponsor"] != "CFO" {
		t.Error("Context lost data")
	}
}

func TestMarshalJSON(t *testing.T) {
	kb := KnowledgeBase{"risk": {"b": "2", "a": "1"}, "overview": {}}

	b, err := json.Marshal(kb)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"overview":{},"risk":{"a":"1","b":"2"}}`
	if string(b) != want {
		t.Errorf("Expected %s, got %s", want, b)
	}
}
