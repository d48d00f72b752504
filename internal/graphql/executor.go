package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/tournevent/dhlexpress/pkg/shipper"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"
)

// Error codes set in the "code" extension of GraphQL errors.
const (
	CodeParseFailed        = "GRAPHQL_PARSE_FAILED"
	CodeValidationFailed   = "GRAPHQL_VALIDATION_FAILED"
	CodeBadUserInput       = "BAD_USER_INPUT"
	CodeCarrierNotFound    = "CARRIER_NOT_FOUND"
	CodeCarrierUnavailable = "CARRIER_UNAVAILABLE"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// ErrNoOperation is returned when the document has no operation matching
// the requested name.
var ErrNoOperation = errors.New("no operation found")

type fieldFunc func(ctx context.Context, r *Resolver, field *ast.Field, vars map[string]any) (any, error)

var queryFields = map[string]fieldFunc{
	"health": func(ctx context.Context, r *Resolver, _ *ast.Field, _ map[string]any) (any, error) {
		return r.Query().Health(ctx)
	},
	"carriers": func(ctx context.Context, r *Resolver, _ *ast.Field, _ map[string]any) (any, error) {
		return r.Query().Carriers(ctx)
	},
	"dhl_track": func(ctx context.Context, r *Resolver, field *ast.Field, vars map[string]any) (any, error) {
		var input TrackInput
		if err := decodeInput(field, vars, &input); err != nil {
			return nil, err
		}
		return r.Query().DhlTrack(ctx, input)
	},
	"dhl_proof_of_delivery": func(ctx context.Context, r *Resolver, field *ast.Field, vars map[string]any) (any, error) {
		var input ProofOfDeliveryInput
		if err := decodeInput(field, vars, &input); err != nil {
			return nil, err
		}
		return r.Query().DhlProofOfDelivery(ctx, input)
	},
}

var mutationFields = map[string]fieldFunc{
	"dhl_create_shipment": func(ctx context.Context, r *Resolver, field *ast.Field, vars map[string]any) (any, error) {
		var input CreateShipmentInput
		if err := decodeInput(field, vars, &input); err != nil {
			return nil, err
		}
		return r.Mutation().DhlCreateShipment(ctx, input)
	},
}

// Execute runs a GraphQL request against the resolver. Root fields are
// resolved in document order and each result is trimmed to its selection set.
// Field errors null the field and are reported in the response errors.
func (r *Resolver) Execute(ctx context.Context, params *gqlgen.RawParams) *gqlgen.Response {
	doc, err := parser.ParseQuery(&ast.Source{Input: params.Query})
	if err != nil {
		gqlErr := gqlerror.WrapIfUnwrapped(err)
		setCode(gqlErr, CodeParseFailed)
		return &gqlgen.Response{Errors: gqlerror.List{gqlErr}}
	}

	op := doc.Operations.ForName(params.OperationName)
	if op == nil {
		gqlErr := gqlerror.Errorf("%s: %q", ErrNoOperation, params.OperationName)
		setCode(gqlErr, CodeValidationFailed)
		return &gqlgen.Response{Errors: gqlerror.List{gqlErr}}
	}

	fields := queryFields
	if op.Operation == ast.Mutation {
		fields = mutationFields
	} else if op.Operation != ast.Query {
		gqlErr := gqlerror.Errorf("%s operations are not supported", op.Operation)
		setCode(gqlErr, CodeValidationFailed)
		return &gqlgen.Response{Errors: gqlerror.List{gqlErr}}
	}

	vars := params.Variables
	if vars == nil {
		vars = map[string]any{}
	}

	var (
		data   object
		errs   gqlerror.List
		frags  = doc.Fragments
		leaves = collectFields(op.SelectionSet, frags)
	)
	for _, field := range leaves {
		path := ast.Path{ast.PathName(field.Alias)}
		resolve, ok := fields[field.Name]
		if !ok {
			gqlErr := gqlerror.ErrorPathf(path, "unknown %s field %q", op.Operation, field.Name)
			setCode(gqlErr, CodeValidationFailed)
			errs = append(errs, gqlErr)
			data = append(data, member{field.Alias, nil})
			continue
		}

		value, err := resolve(ctx, r, field, vars)
		if err != nil {
			r.Logger.Ctx(ctx).Debug("GraphQL field failed", zap.String("field", field.Name), zap.Error(err))
			errs = append(errs, fieldError(path, err))
			data = append(data, member{field.Alias, nil})
			continue
		}

		projected, err := project(value, field.SelectionSet, frags)
		if err != nil {
			errs = append(errs, fieldError(path, err))
			data = append(data, member{field.Alias, nil})
			continue
		}
		data = append(data, member{field.Alias, projected})
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return &gqlgen.Response{Errors: append(errs, fieldError(nil, err))}
	}
	return &gqlgen.Response{Data: raw, Errors: errs}
}

// decodeInput resolves the "input" argument against the variables and
// decodes it into dst.
func decodeInput(field *ast.Field, vars map[string]any, dst any) error {
	arg := field.Arguments.ForName("input")
	if arg == nil {
		return shipper.NewInputError("input", "argument is required", shipper.ErrInvalidInput)
	}
	value, err := arg.Value.Value(vars)
	if err != nil {
		return shipper.NewInputError("input", err.Error(), shipper.ErrInvalidInput)
	}
	if value == nil {
		return shipper.NewInputError("input", "must not be null", shipper.ErrInvalidInput)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return shipper.NewInputError("input", err.Error(), shipper.ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return shipper.NewInputError("input", err.Error(), shipper.ErrInvalidInput)
	}
	return nil
}

// collectFields flattens inline fragments and fragment spreads.
func collectFields(set ast.SelectionSet, frags ast.FragmentDefinitionList) []*ast.Field {
	var out []*ast.Field
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			out = append(out, s)
		case *ast.InlineFragment:
			out = append(out, collectFields(s.SelectionSet, frags)...)
		case *ast.FragmentSpread:
			if def := frags.ForName(s.Name); def != nil {
				out = append(out, collectFields(def.SelectionSet, frags)...)
			}
		}
	}
	return out
}

// project trims a resolved value to the selection set. Scalars and lists of
// scalars are returned as is.
func project(value any, set ast.SelectionSet, frags ast.FragmentDefinitionList) (any, error) {
	if len(set) == 0 {
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return selectFields(generic, collectFields(set, frags), frags), nil
}

func selectFields(value any, fields []*ast.Field, frags ast.FragmentDefinitionList) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(object, 0, len(fields))
		for _, f := range fields {
			child := v[f.Name]
			if len(f.SelectionSet) > 0 {
				child = selectFields(child, collectFields(f.SelectionSet, frags), frags)
			}
			out = append(out, member{f.Alias, child})
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = selectFields(item, fields, frags)
		}
		return out
	default:
		return value
	}
}

func fieldError(path ast.Path, err error) *gqlerror.Error {
	gqlErr := &gqlerror.Error{Message: err.Error(), Path: path}

	var shipperErr *shipper.ShipperError
	switch {
	case shipper.IsCallerError(err):
		setCode(gqlErr, CodeBadUserInput)
		var inputErr *shipper.InputError
		if errors.As(err, &inputErr) {
			gqlErr.Extensions["field"] = inputErr.Field
		}
	case errors.Is(err, shipper.ErrCarrierNotFound):
		setCode(gqlErr, CodeCarrierNotFound)
	case errors.As(err, &shipperErr):
		setCode(gqlErr, CodeCarrierUnavailable)
		gqlErr.Extensions["carrier"] = shipperErr.Carrier
		gqlErr.Extensions["retryable"] = shipper.IsRetryable(err)
	default:
		setCode(gqlErr, CodeInternal)
	}
	return gqlErr
}

func setCode(err *gqlerror.Error, code string) {
	if err.Extensions == nil {
		err.Extensions = map[string]any{}
	}
	err.Extensions["code"] = code
}

// object is a JSON object that keeps its keys in insertion order, matching
// the order of the selection set.
type object []member

type member struct {
	key   string
	value any
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", m.key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
