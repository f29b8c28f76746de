package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/octobees/contact-finder/internal/dto"
	"github.com/octobees/contact-finder/internal/entity"
	"github.com/octobees/contact-finder/internal/heuristics"
)

// --- extract ---

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract contact signals from one website without storing them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := heuristics.CanonicalURL(args[0])
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", args[0], err)
		}

		d, err := loadDeps(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer d.close()

		res := d.extractor().Extract(cmd.Context(), target)
		contact := entity.Contact{URL: res.URL}
		res.ApplyTo(&contact)
		return printJSON(cmd.OutOrStdout(), contact)
	},
}

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass over a sources CSV",
	Long: `Run one ingestion pass over a sources CSV and print the summary.

Examples:
  contactctl ingest
  contactctl ingest --sources ./assets/sample-websites-company-names.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer d.close()

		sources, _ := cmd.Flags().GetString("sources")
		if sources == "" {
			sources = d.cfg.Ingest.SourcesPath
		}

		summary, err := d.ingestService().RunFromFile(cmd.Context(), sources)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), summary)
	},
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored contacts",
	Long: `Search stored contacts with the same ranking the API uses.

Examples:
  contactctl search "acme bakery"
  contactctl search acme --sort-by company_commercial_name --order asc
  contactctl search acme --near 40.71,-74.00 --max-distance 5000`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := searchParamsFromFlags(cmd, strings.Join(args, " "))
		if err != nil {
			return err
		}

		d, err := loadDeps(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer d.close()

		result, err := d.searchService().Search(cmd.Context(), params)
		if err != nil {
			return err
		}
		if asTable, _ := cmd.Flags().GetBool("table"); asTable {
			return printTable(cmd.OutOrStdout(), result)
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

// --- get ---

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch one stored contact by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("id must be a positive integer, got %q", args[0])
		}

		d, err := loadDeps(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer d.close()

		contact, err := d.searchService().GetByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), contact)
	},
}

func init() {
	ingestCmd.Flags().String("sources", "", "sources CSV path (default: SOURCES_PATH)")

	addSearchFlags(searchCmd)
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 20, "results per page")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().String("sort-by", "score", "sort key")
	cmd.Flags().String("order", "desc", "asc or desc")
	cmd.Flags().String("near", "", "origin as lat,lng")
	cmd.Flags().Float64("max-distance", 0, "radius in meters around --near")
	cmd.Flags().Bool("table", false, "print a table instead of JSON")
}

func searchParamsFromFlags(cmd *cobra.Command, query string) (dto.SearchParams, error) {
	limit, _ := cmd.Flags().GetInt("limit")
	page, _ := cmd.Flags().GetInt("page")
	sortBy, _ := cmd.Flags().GetString("sort-by")
	order, _ := cmd.Flags().GetString("order")
	near, _ := cmd.Flags().GetString("near")
	maxDistance, _ := cmd.Flags().GetFloat64("max-distance")

	if limit <= 0 || page <= 0 {
		return dto.SearchParams{}, fmt.Errorf("--limit and --page must be positive")
	}

	params := dto.SearchParams{Query: query, Limit: limit, Page: page, SortBy: sortBy, Order: order}
	if near == "" {
		return params, nil
	}

	latStr, lngStr, ok := strings.Cut(near, ",")
	if !ok {
		return dto.SearchParams{}, fmt.Errorf("--near must be lat,lng")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return dto.SearchParams{}, fmt.Errorf("invalid latitude %q", latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil || lng < -180 || lng > 180 {
		return dto.SearchParams{}, fmt.Errorf("invalid longitude %q", lngStr)
	}
	if maxDistance < 0 {
		return dto.SearchParams{}, fmt.Errorf("--max-distance must not be negative")
	}
	params.Near = &dto.Near{Lat: lat, Lng: lng, MaxDistance: maxDistance}
	return params, nil
}
