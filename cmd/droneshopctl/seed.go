package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/droneshop/internal/hash"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/util"
)

func seedCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the store with an admin account or a product catalog",
	}
	cmd.AddCommand(seedAdminCmd(open), seedProductsCmd(open))
	return cmd
}

type adminOptions struct {
	Email    string
	Password string
	Name     string
}

func seedAdminCmd(open storeOpener) *cobra.Command {
	opts := adminOptions{}
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create a verified admin account, or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := open(ctx)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())
			return seedAdmin(ctx, st, opts, time.Now().UTC(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.Email, "email", "admin@drone.com", "Admin email")
	cmd.Flags().StringVar(&opts.Password, "password", os.Getenv("ADMIN_PASSWORD"), "Admin password (defaults to $ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&opts.Name, "name", "Admin User", "Admin display name")
	return cmd
}

type adminStore interface {
	store.Accounts
	store.Users
}

// seedAdmin is idempotent: an existing account keeps its password and only
// has its profile role raised to admin.
func seedAdmin(ctx context.Context, st adminStore, opts adminOptions, now time.Time, out io.Writer) error {
	email := strings.ToLower(strings.TrimSpace(opts.Email))
	if email == "" {
		return errors.New("admin email is required")
	}

	_, err := st.GetAuthByEmail(ctx, email)
	switch {
	case err == nil:
		if err := promote(ctx, st, email, opts.Name, now); err != nil {
			return err
		}
		fmt.Fprintf(out, "admin %s already exists; role confirmed\n", email)
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("lookup account: %w", err)
	}

	if len(opts.Password) < 6 {
		return errors.New("admin password must be at least 6 characters (use --password or ADMIN_PASSWORD)")
	}
	hashed, err := hash.HashPassword(opts.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	verified := true
	if err := st.CreateAuth(ctx, &models.Auth{
		Email:         email,
		PasswordHash:  hashed,
		Name:          opts.Name,
		EmailVerified: &verified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	if err := promote(ctx, st, email, opts.Name, now); err != nil {
		return err
	}
	fmt.Fprintf(out, "admin %s created\n", email)
	return nil
}

func promote(ctx context.Context, st store.Users, email, name string, now time.Time) error {
	err := st.SetUserRole(ctx, email, models.RoleAdmin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("set role: %w", err)
	}
	if err := st.CreateUser(ctx, &models.User{
		Email:     email,
		Name:      name,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// catalogFile is the YAML layout read by "seed products".
type catalogFile struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Slug        string `yaml:"slug"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
	Products []struct {
		Title         string             `yaml:"title"`
		Description   string             `yaml:"description"`
		Img           string             `yaml:"img"`
		Price         float64            `yaml:"price"`
		OriginalPrice float64            `yaml:"originalPrice"`
		Category      string             `yaml:"category"`
		Stock         int                `yaml:"stock"`
		Featured      bool               `yaml:"featured"`
		Variations    []models.Variation `yaml:"variations"`
	} `yaml:"products"`
}

type catalogStore interface {
	store.Products
	store.Categories
}

func seedProductsCmd(open storeOpener) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Insert products and categories from a YAML catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			st, err := open(ctx)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())
			return seedProducts(ctx, st, f, time.Now().UTC(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "YAML catalog to load")
	return cmd
}

func seedProducts(ctx context.Context, st catalogStore, r io.Reader, now time.Time, out io.Writer) error {
	var cat catalogFile
	if err := yaml.NewDecoder(r).Decode(&cat); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	cats := 0
	for _, c := range cat.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		slug := c.Slug
		if slug == "" {
			slug = util.Slugify(name)
		}
		err := st.CreateCategory(ctx, &models.Category{Name: name, Slug: slug, Description: c.Description})
		switch {
		case err == nil:
			cats++
		case errors.Is(err, store.ErrDuplicate):
		default:
			return fmt.Errorf("create category %q: %w", name, err)
		}
	}

	products := 0
	for i, p := range cat.Products {
		if strings.TrimSpace(p.Title) == "" || p.Price < 0 {
			return fmt.Errorf("product #%d: title is required and price cannot be negative", i+1)
		}
		if err := st.CreateProduct(ctx, &models.Product{
			Title:         strings.TrimSpace(p.Title),
			Description:   p.Description,
			Img:           p.Img,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Category:      strings.TrimSpace(p.Category),
			Stock:         p.Stock,
			Featured:      p.Featured,
			Variations:    p.Variations,
			CreatedAt:     now,
			UpdatedAt:     now,
		}); err != nil {
			return fmt.Errorf("create product %q: %w", p.Title, err)
		}
		products++
	}

	fmt.Fprintf(out, "seeded %d categories and %d products\n", cats, products)
	return nil
}
