package journal

import "testing"

func TestTypeValid(t *testing.T) {
	valid := []Type{
		TypeOpen, TypePayment, TypePenalty, TypeFrozen, TypeLocked,
		TypeLimitIncrease, TypeLimitReversal, TypeLimitRelease,
		TypeLimitReduce, TypeDefaulted,
	}
	for _, typ := range valid {
		if !typ.Valid() {
			t.Errorf("Type(%q).Valid() = false, want true", typ)
		}
	}

	for _, typ := range []Type{"", "refund", "OPEN"} {
		if typ.Valid() {
			t.Errorf("Type(%q).Valid() = true, want false", typ)
		}
	}
}
