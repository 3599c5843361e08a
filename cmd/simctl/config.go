package simctl

import (
	"fmt"

	"github.com/arthur-debert/simctl/pkg/config"
	"github.com/arthur-debert/simctl/pkg/display"
	"github.com/arthur-debert/simctl/pkg/runtimeconfig"
	"github.com/arthur-debert/simctl/pkg/xmlconfig"
	"github.com/spf13/cobra"
)

func newConfigCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "sites",
	}

	// accessor opens the runtime settings of a provisioned instance
	accessor := func(cmd *cobra.Command, name string) (*session, *runtimeconfig.Accessor, error) {
		s, err := load(cmd)
		if err != nil {
			return nil, nil, err
		}
		inst, err := s.sites.Lookup(name)
		if err != nil {
			return nil, nil, err
		}
		return s, runtimeconfig.New(inst.WebRootPath, runtimeconfig.Options{FS: s.fs}), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "effective <instance>",
		Short:             MsgConfigEffectiveShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: instanceCompletion(load),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, a, err := accessor(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := a.Effective()
			if err != nil {
				return err
			}
			if s.out.Format() == display.FormatJSON {
				return s.out.JSON(map[string]string{"web_root": a.WebRoot(), "config": xmlconfig.Pretty(doc)})
			}
			_, err = fmt.Fprint(s.out.Writer(), xmlconfig.Pretty(doc))
			return err
		},
	})

	var variable bool
	get := &cobra.Command{
		Use:               "get <instance> <setting>",
		Short:             MsgConfigGetShort,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: instanceCompletion(load),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, a, err := accessor(cmd, args[0])
			if err != nil {
				return err
			}
			lookup := a.Setting
			if variable {
				lookup = a.Variable
			}
			value, err := lookup(args[1])
			if err != nil {
				return err
			}
			if s.out.Format() == display.FormatJSON {
				return s.out.JSON(map[string]string{"name": args[1], "value": value})
			}
			_, err = fmt.Fprintln(s.out.Writer(), value)
			return err
		},
	}
	get.Flags().BoolVar(&variable, "variable", false, MsgFlagVariable)
	cmd.AddCommand(get)

	cmd.AddCommand(&cobra.Command{
		Use:               "set <instance> <element-path> <value>",
		Short:             MsgConfigSetShort,
		Example:           "  simctl config set sc81 /configuration/sitecore/dataFolder /data/sc81",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: instanceCompletion(load),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, a, err := accessor(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := a.Base()
			if err != nil {
				return err
			}
			if err := xmlconfig.SetElementValue(doc, args[1], args[2]); err != nil {
				return err
			}
			if err := xmlconfig.Save(s.fs, a.WebConfigPath(), doc); err != nil {
				return err
			}
			s.out.Success(MsgValueSet, args[1], args[2], a.WebConfigPath())
			return nil
		},
	})

	var maxLines int
	diff := &cobra.Command{
		Use:               "diff <instance>",
		Short:             MsgConfigDiffShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: instanceCompletion(load),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, a, err := accessor(cmd, args[0])
			if err != nil {
				return err
			}
			text, truncated, err := a.Diff(maxLines)
			if err != nil {
				return err
			}
			if s.out.Format() == display.FormatJSON {
				return s.out.JSON(map[string]interface{}{"diff": text, "truncated": truncated})
			}
			if text == "" {
				_, err = fmt.Fprintln(s.out.Writer(), MsgNoDifferences)
				return err
			}
			if _, err := fmt.Fprint(s.out.Writer(), text); err != nil {
				return err
			}
			if truncated {
				s.out.Warn(MsgDiffTruncated)
			}
			return nil
		},
	}
	diff.Flags().IntVar(&maxLines, "max-lines", 200, MsgFlagMaxLines)
	cmd.AddCommand(diff)

	cmd.AddCommand(&cobra.Command{
		Use:   "defaults",
		Short: MsgConfigDefaultsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultContent())
			return err
		},
	})

	return cmd
}
