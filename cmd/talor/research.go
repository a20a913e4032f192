package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heirclark17/talor/config"
	"github.com/heirclark17/talor/internal/research"
	srv "github.com/heirclark17/talor/internal/server"
)

func researchCMD() *cobra.Command {
	var cfgPath string
	var industry string
	var jobTitle string
	var roleCategory string
	var recencyDays int
	var maxItems int

	var cmd = &cobra.Command{
		Use:   "research [company]",
		Short: "Run one research request and print the ranked findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			engine, err := srv.BuildEngine(cfg, nil)
			if err != nil {
				return err
			}
			result, err := engine.Research(context.Background(), research.RequestContext{
				CompanyName:  args[0],
				Industry:     industry,
				JobTitle:     jobTitle,
				RoleCategory: roleCategory,
				RecencyDays:  recencyDays,
				MaxItems:     maxItems,
			})
			if err != nil {
				return err
			}
			fmt.Printf("sources: %d ok, %d failed\n\n", result.SourcesSucceeded, result.SourcesFailed)
			for i, item := range result.Items {
				fmt.Printf("%2d. [%.2f] (%s) %s\n", i+1, item.Relevance, item.Canonical.Kind, item.Canonical.Body)
				for _, cit := range item.Citations {
					fmt.Printf("      %s %s\n", cit.SourceName, cit.SourceURL)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&industry, "industry", "", "company industry")
	cmd.Flags().StringVar(&jobTitle, "job-title", "", "target job title")
	cmd.Flags().StringVar(&roleCategory, "role-category", "", "role category (engineering, sales, ...)")
	cmd.Flags().IntVar(&recencyDays, "recency-days", 0, "recency scoring window in days")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "result cap")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
