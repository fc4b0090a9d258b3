package ledger

import "testing"

func TestAllowedNextIsMonotone(t *testing.T) {
	states := []Visibility{Private, Witnessed, Rumor, Reported, Public}
	for _, from := range states {
		for _, to := range AllowedNext(from) {
			if rank(to) <= rank(from) {
				t.Fatalf("transition %s -> %s is not an increase", from, to)
			}
		}
	}
}

func TestLatticeShape(t *testing.T) {
	// Any state may jump straight to REPORTED or PUBLIC.
	for _, from := range []Visibility{Private, Witnessed, Rumor} {
		if !CanPromote(from, Reported) {
			t.Fatalf("%s -> REPORTED should be legal", from)
		}
		if !CanPromote(from, Public) {
			t.Fatalf("%s -> PUBLIC should be legal", from)
		}
	}
	if !CanPromote(Reported, Public) {
		t.Fatalf("REPORTED -> PUBLIC should be legal")
	}

	// PRIVATE and WITNESSED each reach RUMOR independently.
	if !CanPromote(Private, Rumor) || !CanPromote(Witnessed, Rumor) {
		t.Fatalf("PRIVATE/WITNESSED -> RUMOR should be legal")
	}

	// Never backward.
	if CanPromote(Public, Reported) || CanPromote(Reported, Rumor) || CanPromote(Rumor, Witnessed) || CanPromote(Witnessed, Private) {
		t.Fatalf("demotion must be illegal")
	}
	if len(AllowedNext(Public)) != 0 {
		t.Fatalf("PUBLIC is terminal")
	}

	// RUMOR is not reachable from REPORTED or PUBLIC.
	if CanPromote(Reported, Rumor) || CanPromote(Public, Rumor) {
		t.Fatalf("RUMOR unreachable from REPORTED/PUBLIC")
	}
}

func TestValidateRecordRules(t *testing.T) {
	if err := validateRecord(KindTheft, "Ivo", "Mara", Private); err != nil {
		t.Fatalf("covert theft should record PRIVATE: %v", err)
	}
	if err := validateRecord(KindTheft, "Ivo", "Mara", Public); err == nil {
		t.Fatalf("a thief cannot assert their own theft PUBLIC")
	}
	if err := validateRecord(KindTheft, "Ivo", "", Private); err == nil {
		t.Fatalf("theft without a target must be rejected")
	}
	if err := validateRecord(KindArrest, "Bram", "Ivo", Reported); err != nil {
		t.Fatalf("an arrest is an inherently public act: %v", err)
	}
	if err := validateRecord(KindArrest, "Bram", "Ivo", Private); err == nil {
		t.Fatalf("an arrest cannot be hidden")
	}
	if err := validateRecord(Kind("heist"), "Ivo", "Mara", Private); err == nil {
		t.Fatalf("unknown kinds must be rejected")
	}
	if err := validateRecord(KindBirth, "Mara", "", Public); err != nil {
		t.Fatalf("birth: %v", err)
	}
}
