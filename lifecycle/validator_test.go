package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
)

func TestCanonicalSerialIdempotent(t *testing.T) {
	for _, in := range []string{"sn-1", "SN-1", " ab12cd ", "", "ÄbC"} {
		once := CanonicalSerial(in)
		if twice := CanonicalSerial(once); twice != once {
			t.Fatalf("CanonicalSerial(%q): %q then %q", in, once, twice)
		}
	}
}

func TestGoverningSerialPriority(t *testing.T) {
	cases := []struct {
		f    Fields
		want string
	}{
		{Fields{SerialNumber: "A", NewSerialNumber: "B", OldSerialNumber: "C"}, "A"},
		{Fields{NewSerialNumber: "B", OldSerialNumber: "C"}, "B"},
		{Fields{OldSerialNumber: "C"}, "C"},
		{Fields{}, ""},
	}
	for _, tc := range cases {
		if got := tc.f.GoverningSerial(); got != tc.want {
			t.Errorf("GoverningSerial(%+v) = %q, want %q", tc.f, got, tc.want)
		}
	}
}

func TestValidateScenarios(t *testing.T) {
	cases := []struct {
		name     string
		existing models.Switch
		submit   Fields
		reason   string // empty: accepted
	}{
		{
			name:     "superseded old serial is free",
			existing: models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN1", NewSerialNumber: "SN2"},
			submit:   Fields{SerialNumber: "SN1", Status: "faulty_not_sent"},
		},
		{
			name:     "serial held by a unit out for repair",
			existing: models.Switch{Status: models.StatusSentForFix, SerialNumber: "SN3"},
			submit:   Fields{SerialNumber: "SN3"},
			reason:   ReasonNotFixed,
		},
		{
			name:     "fixed but not delivered",
			existing: models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN4", DeliveredStatus: delivered(models.NotDelivered)},
			submit:   Fields{SerialNumber: "SN4"},
			reason:   ReasonNotDelivered,
		},
		{
			name:     "fixed and delivered is reusable",
			existing: models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN5", DeliveredStatus: delivered(models.Delivered)},
			submit:   Fields{SerialNumber: "SN5"},
		},
		{
			name:     "lowercase input is canonicalised before lookup",
			existing: models.Switch{Status: models.StatusFaultyNotSent, SerialNumber: "SN6"},
			submit:   Fields{SerialNumber: "sn6"},
			reason:   ReasonNotFixed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			seed(t, store, tc.existing)
			v := NewValidator(NewResolver(store))

			sub, err := v.ValidateAndPrepare(context.Background(), tc.submit, false, 0)
			if tc.reason == "" {
				if err != nil {
					t.Fatalf("expected accept, got %v", err)
				}
				if sub == nil {
					t.Fatal("nil submission")
				}
				return
			}
			var ce *ConflictError
			if !errors.As(err, &ce) {
				t.Fatalf("expected conflict, got %v", err)
			}
			if ce.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", ce.Reason, tc.reason)
			}
			if KindOf(err) != KindConflict {
				t.Fatalf("kind = %v", KindOf(err))
			}
		})
	}
}

func TestValidateUpdateExcludesSelf(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, models.Switch{UniqueKey: 7, Status: models.StatusFaultyNotSent, SerialNumber: "SELF"})
	v := NewValidator(NewResolver(store))

	if _, err := v.ValidateAndPrepare(context.Background(), Fields{Status: "sent_for_fix", SerialNumber: "self"}, true, 7); err != nil {
		t.Fatalf("update against itself rejected: %v", err)
	}
	if _, err := v.ValidateAndPrepare(context.Background(), Fields{SerialNumber: "self"}, false, 7); KindOf(err) != KindConflict {
		t.Fatalf("create must not honour excludeKey, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	v := NewValidator(NewResolver(NewMemoryStore()))
	cases := []struct {
		name     string
		f        Fields
		isUpdate bool
		field    string
	}{
		{"empty update", Fields{}, true, ""},
		{"unknown status", Fields{Status: "lost", SerialNumber: "A"}, false, "status"},
		{"missing serial for faulty", Fields{Model: "x"}, false, "serialNumber"},
		{"missing serial for sent", Fields{Status: "sent_for_fix"}, false, "serialNumber"},
		{"missing old serial for fixed", Fields{Status: "fixed", NewSerialNumber: "B"}, false, "oldSerialNumber"},
		{"bad delivered status", Fields{Status: "fixed", OldSerialNumber: "A", DeliveredStatus: "maybe"}, false, "deliveredStatus"},
		{"bad date", Fields{Status: "sent_for_fix", SerialNumber: "A", DateSent: "yesterday"}, false, "dateSent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateAndPrepare(context.Background(), tc.f, tc.isUpdate, 1)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestDecodePrunesDeliveredStatus(t *testing.T) {
	for _, status := range []string{"", "faulty_not_sent", "sent_for_fix"} {
		sub, err := Decode(Fields{Status: status, SerialNumber: "A", DeliveredStatus: "delivered", OldSerialNumber: "B"})
		if err != nil {
			t.Fatalf("%q: %v", status, err)
		}
		rec := sub.Record()
		if rec.DeliveredStatus != nil {
			t.Fatalf("%q: deliveredStatus kept", status)
		}
		if rec.OldSerialNumber != "" {
			t.Fatalf("%q: fixed-only field kept", status)
		}
	}

	sub, err := Decode(Fields{Status: "fixed", OldSerialNumber: "A", DeliveredStatus: "delivered", SerialNumber: "Z"})
	if err != nil {
		t.Fatal(err)
	}
	rec := sub.Record()
	if rec.Delivery() != models.Delivered || rec.SerialNumber != "" {
		t.Fatalf("fixed record = %+v", rec)
	}
}

func TestDecodeDateFormats(t *testing.T) {
	for _, in := range []string{"2024-03-05", "05/03/2024", "2024-03-05T00:00:00Z"} {
		sub, err := Decode(Fields{Status: "sent_for_fix", SerialNumber: "A", DateSent: in})
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		d := sub.Record().DateSent
		if d == nil || d.Year() != 2024 || d.Month() != 3 || d.Day() != 5 {
			t.Fatalf("%q parsed as %v", in, d)
		}
	}
}

func TestRequiredFields(t *testing.T) {
	if got := RequiredFields(models.StatusFixed); len(got) != 1 || got[0] != "oldSerialNumber" {
		t.Fatalf("fixed: %v", got)
	}
	for _, s := range []models.Status{models.StatusFaultyNotSent, models.StatusSentForFix} {
		if got := RequiredFields(s); len(got) != 1 || got[0] != "serialNumber" {
			t.Fatalf("%s: %v", s, got)
		}
	}
}

func TestSubmissionGoverningSerialFollowsVariant(t *testing.T) {
	cases := []struct {
		f    Fields
		want string
	}{
		{Fields{SerialNumber: "A", OldSerialNumber: "B"}, "A"},
		{Fields{Status: "sent_for_fix", SerialNumber: "A", NewSerialNumber: "C"}, "A"},
		{Fields{Status: "fixed", SerialNumber: "Z", OldSerialNumber: "B", NewSerialNumber: "C"}, "C"},
		{Fields{Status: "fixed", SerialNumber: "Z", OldSerialNumber: "B"}, "B"},
	}
	for _, tc := range cases {
		sub, err := Decode(tc.f)
		if err != nil {
			t.Fatalf("%+v: %v", tc.f, err)
		}
		if got := sub.GoverningSerial(); got != tc.want {
			t.Errorf("GoverningSerial(%+v) = %q, want %q", tc.f, got, tc.want)
		}
	}
}

func TestFixedSubmissionChecksStoredSerial(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, Fields{SerialNumber: "y"}); err != nil {
		t.Fatal(err)
	}

	// serialNumber is dropped for fixed records, so oldSerialNumber is checked
	_, err := svc.Create(ctx, Fields{Status: "fixed", SerialNumber: "z", OldSerialNumber: "y"})
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.Reason != ReasonNotFixed || ce.ConflictKey != 1 {
		t.Fatalf("expected not-fixed conflict on Y, got %v", err)
	}

	// moving the record itself to fixed keeps working
	if _, err := svc.Replace(ctx, 1, Fields{Status: "fixed", SerialNumber: "y", OldSerialNumber: "y"}); err != nil {
		t.Fatalf("in-place repair rejected: %v", err)
	}

	matches, err := NewResolver(store).Resolve(ctx, "Y", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("records claiming Y: %d", len(matches))
	}
}

func TestUpdateWithBlankMembersIsNotEmpty(t *testing.T) {
	v := NewValidator(NewResolver(NewMemoryStore()))
	cases := []struct {
		body  string
		empty bool
	}{
		{`{}`, true},
		{`{"notes":""}`, false},
		{`{"provider":"","model":""}`, false},
	}
	for _, tc := range cases {
		var f Fields
		if err := json.Unmarshal([]byte(tc.body), &f); err != nil {
			t.Fatalf("%s: %v", tc.body, err)
		}
		if f.IsEmpty() != tc.empty {
			t.Fatalf("%s: IsEmpty = %v", tc.body, f.IsEmpty())
		}
		_, err := v.ValidateAndPrepare(context.Background(), f, true, 1)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.body, err)
		}
		if gotEmpty := ve.Message == "Request body cannot be empty"; gotEmpty != tc.empty {
			t.Fatalf("%s: message %q", tc.body, ve.Message)
		}
	}
}
