package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pos-local/internal/repository"
	"go-pos-local/internal/reports"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
)

// Tools runs the assistant's function calls against the terminal data.
type Tools struct {
	repos *repository.Repositories
}

func NewTools(repos *repository.Repositories) *Tools {
	return &Tools{repos: repos}
}

// Declarations describes the tools to the model.
func (t *Tools) Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "check_inventory",
			Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Price, Category, Barcode or Stock.",
		},
		{
			Name:        "update_product_price",
			Description: "Update the price of a specific product using its ID",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeString, Description: "ID of the product"},
					"new_price":  {Type: genai.TypeNumber, Description: "New price"},
				},
				Required: []string{"product_id", "new_price"},
			},
		},
		{
			Name:        "create_product",
			Description: "Add a new product to the inventory",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":     {Type: genai.TypeString, Description: "Name of the product"},
					"price":    {Type: genai.TypeNumber, Description: "Price of the product"},
					"category": {Type: genai.TypeString, Description: "Category (Food, Drink, etc)"},
					"stock":    {Type: genai.TypeInteger, Description: "Initial stock count"},
				},
				Required: []string{"name", "price", "category", "stock"},
			},
		},
		{
			Name:        "get_sales_report",
			Description: "Get total sales revenue for a date range.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
	}
}

// Execute runs one tool call. Failures are reported to the model inside the
// response rather than aborting the conversation.
func (t *Tools) Execute(name string, args map[string]any) map[string]any {
	var (
		resp map[string]any
		err  error
	)
	switch name {
	case "check_inventory":
		resp, err = t.checkInventory()
	case "update_product_price":
		resp, err = t.updatePrice(args)
	case "create_product":
		resp, err = t.createProduct(args)
	case "get_sales_report":
		resp, err = t.salesReport(args)
	default:
		err = fmt.Errorf("unknown tool %q", name)
	}
	if err != nil {
		return map[string]any{"status": "error", "error": err.Error()}
	}
	return resp
}

func (t *Tools) checkInventory() (map[string]any, error) {
	type SimpleProduct struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Category string          `json:"category"`
		Stock    int             `json:"stock"`
		Price    decimal.Decimal `json:"price"`
		Barcode  string          `json:"barcode,omitempty"`
	}
	var simpleList []SimpleProduct
	for _, p := range t.repos.Products.List() {
		simpleList = append(simpleList, SimpleProduct{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Stock:    p.Stock,
			Price:    p.Price,
			Barcode:  p.Barcode,
		})
	}
	jsonBytes, err := json.Marshal(simpleList)
	if err != nil {
		return nil, err
	}
	return map[string]any{"inventory": string(jsonBytes)}, nil
}

func (t *Tools) updatePrice(args map[string]any) (map[string]any, error) {
	id, err := argString(args, "product_id")
	if err != nil {
		return nil, err
	}
	price, err := argNumber(args, "new_price")
	if err != nil {
		return nil, err
	}
	if price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}
	if _, err := t.repos.Products.Update(id, map[string]any{"price": price}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return map[string]any{"status": "Product ID not found"}, nil
		}
		return nil, err
	}
	return map[string]any{"status": "Success", "new_price": price}, nil
}

func (t *Tools) createProduct(args map[string]any) (map[string]any, error) {
	name, err := argString(args, "name")
	if err != nil {
		return nil, err
	}
	price, err := argNumber(args, "price")
	if err != nil {
		return nil, err
	}
	category, _ := argString(args, "category")
	stock, _ := argNumber(args, "stock")

	p, err := t.repos.Products.Create(repository.ProductInput{
		Name:     name,
		Price:    decimal.NewFromFloat(price),
		Category: category,
		Stock:    int(stock),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": "created", "id": p.ID}, nil
}

func (t *Tools) salesReport(args map[string]any) (map[string]any, error) {
	startStr, err := argString(args, "start_date")
	if err != nil {
		return nil, err
	}
	endStr, err := argString(args, "end_date")
	if err != nil {
		return nil, err
	}
	start, err1 := time.ParseInLocation("2006-01-02", startStr, time.Local)
	end, err2 := time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("dates must be in YYYY-MM-DD format")
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	revenue, count := reports.Revenue(t.repos.Sales.List(), start, end)
	f, _ := revenue.Float64()
	return map[string]any{"revenue": f, "sales_count": count}, nil
}

func argString(args map[string]any, key string) (string, error) {
	switch v := args[key].(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("%s is required", key)
		}
		return v, nil
	case float64:
		return decimal.NewFromFloat(v).String(), nil
	case nil:
		return "", fmt.Errorf("%s is required", key)
	}
	return "", fmt.Errorf("%s must be a string", key)
}

func argNumber(args map[string]any, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", key)
		}
		f, _ := d.Float64()
		return f, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	}
	return 0, fmt.Errorf("%s must be a number", key)
}
