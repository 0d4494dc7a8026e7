package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/chroniclehq/chronicle/pkg/model"
)

var putCmd = &cobra.Command{
	Use:   "put [file]",
	Short: "Ingest an entity batch",
	Long:  "Ingest a JSON entity batch from a file or stdin and report per-entity errors.",
	Example: `  chronctl put batch.json
  cat batch.json | chronctl put`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var reader io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			reader = f
		}

		var batch model.EntityList
		if err := json.NewDecoder(reader).Decode(&batch); err != nil {
			return fmt.Errorf("decode batch: %w", err)
		}

		response, err := apiClient(cmd).PutEntities(&batch)
		if err != nil {
			return fmt.Errorf("put failed: %w", err)
		}
		if len(response.Errors) == 0 {
			fmt.Printf("ingested %d entities\n", len(batch.Entities))
			return nil
		}
		return printJSON(response)
	},
}

var entitiesCmd = &cobra.Command{
	Use:   "entities <type>",
	Short: "Query entities of one type",
	Example: `  chronctl entities application --limit 10
  chronctl entities application --primary-filter user:alice --fields EVENTS,OTHER_INFO
  chronctl entities application --from-id app_0042`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		copyFlag(cmd, params, "limit", "limit")
		copyFlag(cmd, params, "window-start", "windowStart")
		copyFlag(cmd, params, "window-end", "windowEnd")
		copyFlag(cmd, params, "from-id", "fromId")
		copyFlag(cmd, params, "from-ts", "fromTs")
		copyFlag(cmd, params, "primary-filter", "primaryFilter")
		copyFlag(cmd, params, "fields", "fields")
		secondary, _ := cmd.Flags().GetStringArray("secondary-filter")
		for _, filter := range secondary {
			params.Add("secondaryFilter", filter)
		}

		list, err := apiClient(cmd).GetEntities(args[0], params)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return printJSON(list)
	},
}

var entityCmd = &cobra.Command{
	Use:     "entity <type> <id>",
	Short:   "Fetch one entity",
	Example: `  chronctl entity application app_0001 --fields LAST_EVENT_ONLY`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, _ := cmd.Flags().GetString("fields")
		entity, err := apiClient(cmd).GetEntity(args[0], args[1], fields)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		return printJSON(entity)
	},
}

var eventsCmd = &cobra.Command{
	Use:     "events <type> <id>...",
	Short:   "Fetch event timelines for entities",
	Example: `  chronctl events application app_0001 app_0002 --event-type started --limit 5`,
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		for _, id := range args[1:] {
			params.Add("entityId", id)
		}
		copyFlag(cmd, params, "limit", "limit")
		copyFlag(cmd, params, "window-start", "windowStart")
		copyFlag(cmd, params, "window-end", "windowEnd")
		eventTypes, _ := cmd.Flags().GetStringArray("event-type")
		for _, t := range eventTypes {
			params.Add("eventType", t)
		}

		list, err := apiClient(cmd).GetEvents(args[0], params)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return printJSON(list)
	},
}

func copyFlag(cmd *cobra.Command, params url.Values, flag, param string) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		params.Set(param, v)
	}
}

func init() {
	rootCmd.AddCommand(putCmd)

	entitiesCmd.Flags().String("limit", "", "maximum entities to return")
	entitiesCmd.Flags().String("window-start", "", "exclusive lower bound on entity start time")
	entitiesCmd.Flags().String("window-end", "", "inclusive upper bound on entity start time")
	entitiesCmd.Flags().String("from-id", "", "resume after this entity id")
	entitiesCmd.Flags().String("from-ts", "", "only entities inserted at or before this time")
	entitiesCmd.Flags().String("primary-filter", "", "primary filter as name:value")
	entitiesCmd.Flags().StringArray("secondary-filter", nil, "secondary filter as name:value (repeatable)")
	entitiesCmd.Flags().String("fields", "", "comma-separated field projection")
	rootCmd.AddCommand(entitiesCmd)

	entityCmd.Flags().String("fields", "", "comma-separated field projection")
	rootCmd.AddCommand(entityCmd)

	eventsCmd.Flags().String("limit", "", "maximum events per entity")
	eventsCmd.Flags().String("window-start", "", "exclusive lower bound on event timestamp")
	eventsCmd.Flags().String("window-end", "", "inclusive upper bound on event timestamp")
	eventsCmd.Flags().StringArray("event-type", nil, "restrict to these event types (repeatable)")
	rootCmd.AddCommand(eventsCmd)
}
