package handler

// public.go exposes the unauthenticated marketing-facing data. The price
// list sits behind the Redis response cache registered in the router; it is
// the only read-heavy anonymous endpoint the application has.

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/LeMizoo/bygagoos-api/internal/httpx"
)

// priceLine is one row of the public serigraphy price list.
type priceLine struct {
    Product    string `json:"product"`
    MinQty     int    `json:"min_qty"`
    UnitCents  int64  `json:"unit_cents"`
    Turnaround string `json:"turnaround"`
}

// priceList is static by design: the workshop updates it a few times a
// year with a deploy, and the marketing site renders it as-is.
var priceList = []priceLine{
    {Product: "t-shirt 1 couleur", MinQty: 10, UnitCents: 650, Turnaround: "5 jours"},
    {Product: "t-shirt 2 couleurs", MinQty: 10, UnitCents: 820, Turnaround: "5 jours"},
    {Product: "t-shirt quadri", MinQty: 20, UnitCents: 1100, Turnaround: "7 jours"},
    {Product: "sweat 1 couleur", MinQty: 10, UnitCents: 1450, Turnaround: "7 jours"},
    {Product: "tote bag 1 couleur", MinQty: 25, UnitCents: 480, Turnaround: "5 jours"},
    {Product: "affiche A3", MinQty: 50, UnitCents: 210, Turnaround: "3 jours"},
}

// Prices returns the public price list.
func Prices(c echo.Context) error {
    return httpx.OK(c, http.StatusOK, echo.Map{"prices": priceList})
}
