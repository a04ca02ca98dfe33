package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
)

func delivered(d models.DeliveredStatus) *models.DeliveredStatus { return &d }

func seed(t *testing.T, store *MemoryStore, records ...models.Switch) {
	t.Helper()
	for i := range records {
		sw := records[i]
		if sw.UniqueKey == 0 {
			sw.UniqueKey = int64(i + 1)
		}
		if err := store.Create(context.Background(), &sw); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		rec       models.Switch
		candidate string
		want      Verdict
	}{
		{
			name:      "old serial superseded by new",
			rec:       models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN1", NewSerialNumber: "SN2"},
			candidate: "SN1",
			want:      VerdictSuperseded,
		},
		{
			name:      "old serial equal to new is a live claim",
			rec:       models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN1", NewSerialNumber: "SN1"},
			candidate: "SN1",
			want:      VerdictNotDelivered,
		},
		{
			name:      "match on new serial is a live claim",
			rec:       models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN1", NewSerialNumber: "SN2"},
			candidate: "SN2",
			want:      VerdictNotDelivered,
		},
		{
			name:      "sent for fix",
			rec:       models.Switch{Status: models.StatusSentForFix, SerialNumber: "SN3"},
			candidate: "SN3",
			want:      VerdictNotFixed,
		},
		{
			name:      "faulty not sent",
			rec:       models.Switch{Status: models.StatusFaultyNotSent, SerialNumber: "SN3"},
			candidate: "SN3",
			want:      VerdictNotFixed,
		},
		{
			name:      "fixed not delivered",
			rec:       models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN4", DeliveredStatus: delivered(models.NotDelivered)},
			candidate: "SN4",
			want:      VerdictNotDelivered,
		},
		{
			name:      "fixed without delivery state",
			rec:       models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN4"},
			candidate: "SN4",
			want:      VerdictNotDelivered,
		},
		{
			name:      "fixed and delivered",
			rec:       models.Switch{Status: models.StatusFixed, OldSerialNumber: "SN5", DeliveredStatus: delivered(models.Delivered)},
			candidate: "SN5",
			want:      VerdictResolved,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(&tc.rec, tc.candidate); got != tc.want {
				t.Fatalf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolverCheckReportsFirstConflict(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store,
		models.Switch{UniqueKey: 1, Status: models.StatusFixed, OldSerialNumber: "X", DeliveredStatus: delivered(models.Delivered)},
		models.Switch{UniqueKey: 2, Status: models.StatusFixed, NewSerialNumber: "X"},
		models.Switch{UniqueKey: 3, Status: models.StatusSentForFix, SerialNumber: "X"},
	)
	r := NewResolver(store)

	err := r.Check(context.Background(), "X", 0)
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if ce.ConflictKey != 2 || ce.Reason != ReasonNotDelivered {
		t.Fatalf("got key %d reason %q", ce.ConflictKey, ce.Reason)
	}

	if err := r.Check(context.Background(), "X", 2); !errors.As(err, &ce) || ce.Reason != ReasonNotFixed {
		t.Fatalf("with key 2 excluded: %v", err)
	}

	matches, err := r.Resolve(context.Background(), "X", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestResolverNoMatches(t *testing.T) {
	r := NewResolver(NewMemoryStore())
	if err := r.Check(context.Background(), "NOPE", 0); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}
