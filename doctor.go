package main

import (
	"fmt"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	chatmodelx "github.com/tanpawarit/careermate/pkg/chatmodel"
)

func newDoctorCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and that every configured model is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadLLMConfig(flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			checked := map[string]bool{}
			agents := []contractx.AgentName{
				contractx.AgentCareerMate,
				contractx.AgentSkillGap,
				contractx.AgentJobFinder,
				contractx.AgentCourseRecommender,
			}
			for _, agent := range agents {
				modelCfg := cfg.ModelFor(agent)
				if checked[modelCfg.Model] {
					continue
				}
				checked[modelCfg.Model] = true

				if err := chatmodelx.Check(cmd.Context(), modelCfg); err != nil {
					return fmt.Errorf("%w: %v", contractx.ErrGeneration, err)
				}
				fmt.Fprintf(out, "ok  model=%s agent=%s\n", modelCfg.Model, agent)
			}
			return nil
		},
	}
}
