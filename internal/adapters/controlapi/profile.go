package controlapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	apperrors "github.com/target/control-panel-ui/internal/errors"
)

// ProfileMapping holds JMESPath expressions selecting each profile field from the
// current-user response. Empty expressions fall back to the API's field names.
type ProfileMapping struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// DefaultProfileMapping matches the Control API's {id, email, full_name, role} shape.
func DefaultProfileMapping() ProfileMapping {
	return ProfileMapping{ID: "id", Email: "email", Name: "full_name", Role: "role"}
}

type searcher interface {
	Search(data any) (any, error)
}

type profileMapper struct {
	id, email, name, role searcher
}

func newProfileMapper(m ProfileMapping) (*profileMapper, error) {
	def := DefaultProfileMapping()
	compile := func(field, expr, fallback string) (searcher, error) {
		expr = firstNonEmpty(expr, fallback)
		compiled, err := jmespath.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("control api: invalid %s expression %q: %w", field, expr, err)
		}
		return compiled, nil
	}

	var (
		pm  profileMapper
		err error
	)
	if pm.id, err = compile("id", m.ID, def.ID); err != nil {
		return nil, err
	}
	if pm.email, err = compile("email", m.Email, def.Email); err != nil {
		return nil, err
	}
	if pm.name, err = compile("name", m.Name, def.Name); err != nil {
		return nil, err
	}
	if pm.role, err = compile("role", m.Role, def.Role); err != nil {
		return nil, err
	}
	return &pm, nil
}

// Map extracts a profile from a decoded response document. The id and email must be present.
func (pm *profileMapper) Map(doc any) (domainauth.Profile, error) {
	if _, ok := doc.(map[string]any); !ok {
		return domainauth.Profile{}, apperrors.UnexpectedResponse("profile response is not an object")
	}

	var p domainauth.Profile
	var err error
	if p.ID, err = pm.field(pm.id, doc); err != nil {
		return domainauth.Profile{}, err
	}
	if p.Email, err = pm.field(pm.email, doc); err != nil {
		return domainauth.Profile{}, err
	}
	if p.Name, err = pm.field(pm.name, doc); err != nil {
		return domainauth.Profile{}, err
	}
	role, err := pm.field(pm.role, doc)
	if err != nil {
		return domainauth.Profile{}, err
	}
	p.Role = domainauth.Role(role)

	if p.ID == "" {
		return domainauth.Profile{}, apperrors.UnexpectedResponse("profile response has no id")
	}
	if p.Email == "" {
		return domainauth.Profile{}, apperrors.UnexpectedResponse("profile response has no email")
	}
	return p, nil
}

func (pm *profileMapper) field(s searcher, doc any) (string, error) {
	v, err := s.Search(doc)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnexpectedResponse, "profile field lookup failed")
	}
	return stringify(v)
}

// stringify renders scalar JSON values; numeric ids become decimal strings.
func stringify(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", apperrors.UnexpectedResponsef("profile field has unsupported type %T", v)
	}
}
