package capability

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/careermate/agent/contract"
)

type ArgType string

const (
	ArgString     ArgType = "string"
	ArgStringList ArgType = "string_list"
)

type Arg struct {
	Name     string
	Type     ArgType
	Required bool
	Default  any
	Desc     string
}

// Args holds arguments that already passed validation against a Capability's Args.
type Args map[string]any

func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

func (a Args) Strings(name string) []string {
	v, _ := a[name].([]string)
	return v
}

type Func func(args Args) (any, error)

type Capability struct {
	Name        string
	Description string
	Args        []Arg
	fn          Func
}

// Info renders the argument schema in the form the chat model binds as a tool.
func (c *Capability) Info() *schema.ToolInfo {
	params := make(map[string]*schema.ParameterInfo, len(c.Args))
	for _, arg := range c.Args {
		p := &schema.ParameterInfo{
			Desc:     arg.Desc,
			Required: arg.Required,
		}
		switch arg.Type {
		case ArgStringList:
			p.Type = schema.Array
			p.ElemInfo = &schema.ParameterInfo{Type: schema.String}
		default:
			p.Type = schema.String
		}
		params[arg.Name] = p
	}
	return &schema.ToolInfo{
		Name:        c.Name,
		Desc:        c.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

func (c *Capability) bind(raw map[string]any) (Args, error) {
	out := make(Args, len(c.Args))
	for _, arg := range c.Args {
		v, ok := raw[arg.Name]
		if !ok || v == nil {
			if arg.Required {
				return nil, argumentError(c.Name, arg.Name, "is required")
			}
			if arg.Default != nil {
				out[arg.Name] = arg.Default
			}
			continue
		}

		switch arg.Type {
		case ArgString:
			s, ok := v.(string)
			if !ok {
				return nil, argumentError(c.Name, arg.Name, fmt.Sprintf("must be a string, got %T", v))
			}
			out[arg.Name] = s
		case ArgStringList:
			list, err := toStringList(v)
			if err != nil {
				return nil, argumentError(c.Name, arg.Name, err.Error())
			}
			out[arg.Name] = list
		default:
			return nil, argumentError(c.Name, arg.Name, fmt.Sprintf("unsupported argument type %q", arg.Type))
		}
	}
	return out, nil
}

func toStringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d must be a string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a list of strings, got %T", v)
	}
}

func argumentError(capability, field, reason string) error {
	return fmt.Errorf("%w: capability=%s field=%s %s", contractx.ErrArgument, capability, field, reason)
}
