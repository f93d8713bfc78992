package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/playtrade/storefront/internal/normalize"
)

func (g *Gateway) handleCategories(w http.ResponseWriter, r *http.Request) {
	records, err := g.client.Categories(r.Context())
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	for _, record := range records {
		decorateCategory(record)
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": records})
}

func (g *Gateway) handleGroups(w http.ResponseWriter, r *http.Request) {
	records, err := g.client.GroupsByCategory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	for _, record := range records {
		decorateCategory(record)
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": filterRecords(records, r.URL.Query())})
}

func (g *Gateway) handleAccounts(w http.ResponseWriter, r *http.Request) {
	records, err := g.client.AccountsByGroup(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	for _, record := range records {
		decorateListing(record)
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": filterRecords(records, r.URL.Query())})
}

func (g *Gateway) handleAccountDetail(w http.ResponseWriter, r *http.Request) {
	record, err := g.client.AccountDetail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	decorateListing(record)
	writeJSON(w, http.StatusOK, map[string]any{"result": record})
}

func (g *Gateway) handleServices(w http.ResponseWriter, r *http.Request) {
	records, err := g.client.Services(r.Context())
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	for _, record := range records {
		decorateCategory(record)
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": records})
}

func (g *Gateway) handleServicePackages(w http.ResponseWriter, r *http.Request) {
	records, err := g.client.ServicePackages(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	for _, record := range records {
		decorateListing(record)
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": filterRecords(records, r.URL.Query())})
}

// decorateCategory gives category-like records a single resolved image,
// preferring the thumbnail when both fields are set.
func decorateCategory(record map[string]any) {
	image := stringField(record, "thumbnail")
	if image == "" {
		image = stringField(record, "image")
	}
	record["image"] = normalize.ResolveImageURL(image)
}

// decorateListing normalizes a sellable record: parsed and resolved
// images, a resolved thumb falling back to the first image, and a
// display price in Vietnamese grouping.
func decorateListing(record map[string]any) {
	images := normalize.ParseImageField(record)
	resolved := make([]string, 0, len(images))
	for _, img := range images {
		resolved = append(resolved, normalize.ResolveImageURL(img))
	}
	record["images"] = resolved

	thumb := normalize.ResolveImageURL(stringField(record, "thumb"))
	if thumb == "" && len(resolved) > 0 {
		thumb = resolved[0]
	}
	record["thumb"] = thumb

	if price, ok := numberField(record, "price"); ok {
		record["price_display"] = FormatNumber(price)
	}
}

// filterRecords applies the listing query parameters: search matches
// the name case-insensitively, min_price and max_price bound the price.
// Unparsable bounds are ignored rather than rejected.
func filterRecords(records []map[string]any, query map[string][]string) []map[string]any {
	search := strings.ToLower(strings.TrimSpace(first(query, "search")))
	minPrice, hasMin := parsePrice(first(query, "min_price"))
	maxPrice, hasMax := parsePrice(first(query, "max_price"))

	if search == "" && !hasMin && !hasMax {
		return records
	}

	filtered := make([]map[string]any, 0, len(records))
	for _, record := range records {
		if search != "" {
			name := stringField(record, "name")
			if name == "" {
				name = stringField(record, "accountName")
			}
			if !strings.Contains(strings.ToLower(name), search) {
				continue
			}
		}
		price, _ := numberField(record, "price")
		if hasMin && price < minPrice {
			continue
		}
		if hasMax && price > maxPrice {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

func first(query map[string][]string, key string) string {
	if values := query[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

func stringField(record map[string]any, key string) string {
	if s, ok := record[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func numberField(record map[string]any, key string) (float64, bool) {
	switch v := record[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
