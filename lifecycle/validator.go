package lifecycle

import "context"

// Validator decides whether a submission may be created or may replace an
// existing record.
type Validator struct {
	resolver *Resolver
}

func NewValidator(r *Resolver) *Validator { return &Validator{resolver: r} }

// ValidateAndPrepare canonicalises f, decodes it into its status variant and
// runs identity resolution on the decoded variant's governing serial. On update, excludeKey is
// the record being replaced. Nothing is written.
func (v *Validator) ValidateAndPrepare(ctx context.Context, f Fields, isUpdate bool, excludeKey int64) (*Submission, error) {
	if isUpdate && f.IsEmpty() {
		return nil, invalid("", "Request body cannot be empty")
	}
	f.Canonicalize()

	sub, err := Decode(f)
	if err != nil {
		return nil, err
	}

	if serial := sub.GoverningSerial(); serial != "" {
		if !isUpdate {
			excludeKey = 0
		}
		if err := v.resolver.Check(ctx, serial, excludeKey); err != nil {
			return nil, err
		}
	}
	return sub, nil
}
