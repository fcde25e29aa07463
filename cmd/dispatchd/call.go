package main

import (
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
	"github.com/joeydtaylor/steeze-dispatch/pkg/core"
	"github.com/joeydtaylor/steeze-dispatch/pkg/core/transform"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCallCmd(v *viper.Viper) *cobra.Command {
	var (
		verb        string
		params      []string
		jsonParams  string
		contentType string
		transforms  string
	)
	cmd := &cobra.Command{
		Use:   "call <endpoint>",
		Short: "Call one endpoint and print its result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := core.LoadConfig(v.GetString("manifest"))
			if err != nil {
				return err
			}
			reg, err := core.BuildRegistry(cfg)
			if err != nil {
				return err
			}
			p, err := parseParams(jsonParams, params)
			if err != nil {
				return err
			}
			req := core.CallRequest{
				Endpoint:    args[0],
				Verb:        core.ParseVerb(verb),
				Params:      p,
				ContentType: contentType,
			}
			if transforms != "" {
				fn, err := resolveTransforms(transforms)
				if err != nil {
					return err
				}
				req.Transform = fn
			}

			out, err := core.NewClient(reg).Call(cmd.Context(), req)
			if err != nil {
				f := core.AsFailure(err)
				b, _ := codec.JSON.Marshal(map[string]any{"error": f})
				fmt.Fprintln(cmd.ErrOrStderr(), string(b))
				return fmt.Errorf("call %s: %w", args[0], f)
			}
			b, err := codec.MarshalIndent(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&verb, "verb", "get", "get, post, put or delete")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "key=value param; repeat a key to send a list")
	cmd.Flags().StringVar(&jsonParams, "json", "", "params as a JSON object; --param values override it")
	cmd.Flags().StringVar(&contentType, "content-type", "", "request content type for remote endpoints")
	cmd.Flags().StringVar(&transforms, "transform", "", "comma separated result transforms")
	return cmd
}

func parseParams(jsonText string, kvs []string) (core.Params, error) {
	p := core.Params{}
	if strings.TrimSpace(jsonText) != "" {
		m, ok, err := codec.DecodeObject([]byte(jsonText))
		if err != nil {
			return nil, fmt.Errorf("--json: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("--json: expected an object")
		}
		for k, v := range m {
			p[k] = v
		}
	}

	multi := map[string][]string{}
	for _, kv := range kvs {
		k, val, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--param %q: expected key=value", kv)
		}
		multi[k] = append(multi[k], val)
	}
	for k, vs := range multi {
		if len(vs) == 1 {
			p[k] = vs[0]
			continue
		}
		p[k] = vs
	}
	return p, nil
}

func resolveTransforms(list string) (transform.Func, error) {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return transform.Resolve(names...)
}
