package rules

import (
	"strings"
	"testing"

	"github.com/expr-lang/expr"
)

func TestCompileDoctrineAllPresets(t *testing.T) {
	for _, d := range Doctrines {
		t.Run(d.Name, func(t *testing.T) {
			rules := CompileDoctrine(d)
			if len(rules) == 0 {
				t.Fatal("CompileDoctrine returned no rules")
			}
			for _, r := range rules {
				if _, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool()); err != nil {
					t.Errorf("rule %q failed to compile: %v\ncondition: %s", r.Name, err, r.ConditionSrc)
				}
			}
			if rules[0].Name != "opening-"+d.Opening.String() {
				t.Errorf("first rule = %q, want the opening", rules[0].Name)
			}
		})
	}
}

func TestCompileDoctrineMinesOnlyForSoldiers(t *testing.T) {
	for _, comp := range []Composition{CompositionOutlaws, CompositionSoldiers, CompositionRiders} {
		d := DefaultDoctrine()
		d.Composition = comp
		found := false
		for _, r := range CompileDoctrine(d) {
			if r.Name == "landmines" {
				found = true
			}
		}
		if found != comp.LaysMines() {
			t.Errorf("%s: landmines rule present = %v, want %v", comp, found, comp.LaysMines())
		}
	}
}

func TestCompileDoctrineDefenseThreshold(t *testing.T) {
	low := DefaultDoctrine()
	low.DefensePriority = 0
	high := DefaultDoctrine()
	high.DefensePriority = 1

	find := func(d Doctrine) string {
		for _, r := range CompileDoctrine(d) {
			if r.Name == "general-defense" {
				return r.ConditionSrc
			}
		}
		return ""
	}
	if src := find(low); !strings.Contains(src, "Outnumbered(175)") {
		t.Errorf("low defense condition = %q, want Outnumbered(175)", src)
	}
	if src := find(high); !strings.Contains(src, "Outnumbered(110)") {
		t.Errorf("high defense condition = %q, want Outnumbered(110)", src)
	}
}
