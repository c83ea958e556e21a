package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flowapp/internal/app"
	"flowapp/internal/board"
	"flowapp/internal/db"
	"flowapp/internal/engine"
	"flowapp/internal/migrate"
	"flowapp/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "flow",
	Short: "FlowApp CLI",
	Long: `FlowApp runs a multi-tenant restaurant ordering platform around a
configurable order workflow board. Vendors define board templates (statuses,
columns, transitions, rejection reasons), restaurants pick one, and every
order moves through the board under the engine's transition rules.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FLOWAPP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(vendorCmd())
	rootCmd.AddCommand(restaurantCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(orderCmd())
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				authCfg := server.AuthConfig{
					JWTSecret:              os.Getenv("FLOWAPP_JWT_SECRET"),
					AllowLegacyActorHeader: viper.GetBool("allow-legacy-actor"),
				}
				if authCfg.JWTSecret == "" {
					return fmt.Errorf("FLOWAPP_JWT_SECRET is required for bearer auth")
				}
				handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				fmt.Printf("Serving FlowApp API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	cmd.Flags().Bool("allow-legacy-actor", false, "accept X-Actor-Id header without auth")
	_ = viper.BindPFlag("allow-legacy-actor", cmd.Flags().Lookup("allow-legacy-actor"))
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := app.Seed(ctx, e); err != nil {
					return err
				}
				fmt.Println("Demo data loaded.")
				return nil
			})
		},
	}
}

func vendorCmd() *cobra.Command {
	vendor := &cobra.Command{Use: "vendor", Short: "Manage vendors"}
	vendor.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List vendors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListVendors(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				t := newTable("ID", "NAME", "CREATED")
				for _, v := range items {
					t.AppendRow(table.Row{v.ID, v.Name, v.CreatedAt})
				}
				t.Render()
				return nil
			})
		},
	})
	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a vendor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				v, err := e.CreateVendor(ctx, "", name)
				if err != nil {
					return err
				}
				return printJSON(v)
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "vendor name")
	_ = create.MarkFlagRequired("name")
	vendor.AddCommand(create)
	return vendor
}

func restaurantCmd() *cobra.Command {
	rest := &cobra.Command{Use: "restaurant", Short: "Manage restaurants"}
	rest.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List restaurants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListRestaurants(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				t := newTable("ID", "VENDOR", "NAME", "BOARD TEMPLATE")
				for _, r := range items {
					boardID := "(default)"
					if r.BoardTemplateID != nil {
						boardID = *r.BoardTemplateID
					}
					t.AppendRow(table.Row{r.ID, r.VendorID, r.Name, boardID})
				}
				t.Render()
				return nil
			})
		},
	})
	return rest
}

func boardCmd() *cobra.Command {
	b := &cobra.Command{Use: "board", Short: "Manage and inspect workflow boards"}
	b.AddCommand(boardShowCmd())
	b.AddCommand(boardImportCmd())
	b.AddCommand(boardExportCmd())
	b.AddCommand(boardValidateCmd())
	return b
}

func boardShowCmd() *cobra.Command {
	var restaurantID string
	var showCompleted, showRejected bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render a restaurant's board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				cfg, err := e.BoardConfig(ctx, restaurantID)
				if err != nil {
					return err
				}
				orders, err := e.Repo.ListOrdersByRestaurant(ctx, restaurantID)
				if err != nil {
					return err
				}
				view := board.View(cfg, orders, board.ViewOptions{
					ShowCompleted: showCompleted,
					ShowRejected:  showRejected,
				})
				if viper.GetBool("json") {
					return printJSON(view)
				}
				for _, col := range view {
					t := newTable("ORDER", "STATUS", "TOTAL", "PLACED")
					t.SetTitle(fmt.Sprintf("%s (%d)", col.Column.Title, len(col.Orders)))
					for _, o := range col.Orders {
						t.AppendRow(table.Row{o.ID, o.Status, fmt.Sprintf("%.2f", o.Total), o.OrderTime})
					}
					t.Render()
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&restaurantID, "restaurant", "", "restaurant id")
	cmd.Flags().BoolVar(&showCompleted, "completed", false, "include completed column")
	cmd.Flags().BoolVar(&showRejected, "rejected", false, "include rejected column")
	_ = cmd.MarkFlagRequired("restaurant")
	return cmd
}

func boardImportCmd() *cobra.Command {
	var filePath, vendorID, name string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a board template from YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := board.FromFile(filePath)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.CreateBoardTemplate(ctx, "", vendorID, name, cfg)
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to YAML board config")
	cmd.Flags().StringVar(&vendorID, "vendor", "", "owning vendor id")
	cmd.Flags().StringVar(&name, "name", "", "template name")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func boardExportCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a board template as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				tpl, err := e.Repo.GetBoardTemplate(cmd.Context(), id)
				if err != nil {
					return err
				}
				cfg, err := board.FromJSON(tpl.ConfigJSON)
				if err != nil {
					return err
				}
				out, err := cfg.ToYAML()
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "board template id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func boardValidateCmd() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a YAML board config",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}
			cfg, err := board.FromYAML(data)
			if err != nil {
				return err
			}
			for _, w := range cfg.Validate() {
				fmt.Printf("warning: %s\n", w.Error())
			}
			fmt.Println("Board config is valid.")
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to YAML board config")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func orderCmd() *cobra.Command {
	order := &cobra.Command{Use: "order", Short: "Inspect and move orders"}
	order.AddCommand(orderListCmd())
	order.AddCommand(orderShowCmd())
	order.AddCommand(orderMoveCmd())
	order.AddCommand(orderTrackCmd())
	return order
}

func orderListCmd() *cobra.Command {
	var restaurantID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a restaurant's orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListOrdersByRestaurant(ctx, restaurantID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				t := newTable("ID", "STATUS", "TOTAL", "PLACED", "UPDATED")
				for _, o := range items {
					t.AppendRow(table.Row{o.ID, o.Status, fmt.Sprintf("%.2f", o.Total), o.OrderTime, o.LastUpdateTime})
				}
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&restaurantID, "restaurant", "", "restaurant id")
	_ = cmd.MarkFlagRequired("restaurant")
	return cmd
}

func orderShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				o, err := e.Repo.GetOrder(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(o)
			})
		},
	}
	return cmd
}

func orderMoveCmd() *cobra.Command {
	var target, reason string
	var force bool
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move an order to a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				o, err := e.ApplyTransition(ctx, engine.ApplyOpts{
					OrderID:        args[0],
					TargetStatusID: target,
					Reason:         reason,
					ActorID:        viper.GetString("actor-id"),
					Force:          force,
				})
				if err != nil {
					return err
				}
				return printJSON(o)
			})
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "target status id")
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason (required when moving to rejected)")
	cmd.Flags().BoolVar(&force, "force", false, "confirm a backward move")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func orderTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <id>",
		Short: "Show order status and wait estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				o, est, err := e.Track(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"order": o, "estimate": est})
				}
				fmt.Printf("Order %s: %s\n", o.ID, o.Status)
				if est.EstimatedMinutes > 0 {
					fmt.Printf("Orders ahead: %d, estimated wait: %d min\n", est.OrdersAhead, est.EstimatedMinutes)
				}
				return nil
			})
		},
	}
	return cmd
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, engine.New(conn))
}

func newTable(headers ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(headers))
	return t
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
