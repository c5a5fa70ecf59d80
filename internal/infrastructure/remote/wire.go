package remote

import (
	"encoding/json"
	"strconv"
	"strings"

	"inventario/internal/core/types"
	"inventario/internal/domain/catalog"
	"inventario/internal/domain/count"
)

// envelope is the fixed response frame of the inventory server. Every
// action answers with success and message; payload fields ride alongside.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// flexString decodes a field the server sends sometimes as a string,
// sometimes as a bare number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

// productRow is one master-list product as emitted by obtener_productos.
type productRow struct {
	DetalleID    int            `json:"detalle_id"`
	ItemProducto flexString     `json:"item_producto"`
	Codigo       flexString     `json:"codigo"`
	Descripcion  string         `json:"descripcion"`
	UnidadMedida string         `json:"unidad_medida"`
	Cantidad     types.Quantity `json:"cantidad"`
}

// productList wraps the several keys the server uses for the same payload.
type productList struct {
	envelope
	Productos []productRow `json:"productos"`
	Datos     []productRow `json:"datos"`
	Data      []productRow `json:"data"`
	Detalle   []productRow `json:"detalle"`
}

// rows returns whichever payload key was populated, first match wins.
func (p *productList) rows() []productRow {
	for _, rows := range [][]productRow{p.Productos, p.Datos, p.Data, p.Detalle} {
		if len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// toProducts normalizes wire rows into catalog products. A row without a
// code falls back to its positional item number; a row without a unit
// counts in UNIDAD.
func toProducts(rows []productRow) []catalog.Product {
	out := make([]catalog.Product, 0, len(rows))
	for i, r := range rows {
		code := catalog.NormalizeCode(r.Codigo.String())
		if code == "" {
			code = catalog.NormalizeCode(r.ItemProducto.String())
		}
		if code == "" {
			code = strconv.Itoa(i + 1)
		}
		out = append(out, catalog.Product{
			DetalleID:   r.DetalleID,
			Codigo:      code,
			Descripcion: strings.TrimSpace(r.Descripcion),
			Unidad:      catalog.NormalizeUnit(r.UnidadMedida),
			Cantidad:    r.Cantidad,
		})
	}
	return out
}

// countRow is one count record as emitted by obtener_conteos.
type countRow struct {
	Numero          int        `json:"numero_inventario"`
	Tipo            string     `json:"tipo_conteo"`
	Tienda          flexString `json:"tienda"`
	Registrante     flexString `json:"registrado_por"`
	Estado          string     `json:"estado"`
	FechaInicio     string     `json:"fecha_inicio"`
	FechaHoraInicio string     `json:"fecha_hora_inicio"`
	FechaFin        string     `json:"fecha_fin"`
}

func (r countRow) toRecord() count.Record {
	inicio := r.FechaInicio
	if inicio == "" || strings.HasPrefix(inicio, "0000") {
		inicio = r.FechaHoraInicio
	}
	return count.Record{
		Identity: count.Identity{
			Numero: r.Numero,
			Tipo:   count.CountType(r.Tipo),
			Tienda: r.Tienda.String(),
		},
		Registrante: r.Registrante.String(),
		Estado:      count.Estado(r.Estado),
		FechaInicio: inicio,
		FechaFin:    r.FechaFin,
	}
}

// detalleRow is one count line as emitted by obtener_detalle.
type detalleRow struct {
	DetalleID       int            `json:"detalle_id"`
	Codigo          flexString     `json:"codigo"`
	Descripcion     string         `json:"descripcion"`
	UnidadMedida    string         `json:"unidad_medida"`
	CantidadFisica  types.Quantity `json:"cantidad_fisica"`
	CantidadSistema types.Quantity `json:"cantidad_sistema"`
}

func toLines(rows []detalleRow, system bool) []count.Line {
	out := make([]count.Line, 0, len(rows))
	for _, r := range rows {
		line := count.Line{
			DetalleID:   r.DetalleID,
			Codigo:      catalog.NormalizeCode(r.Codigo.String()),
			Descripcion: strings.TrimSpace(r.Descripcion),
			Unidad:      catalog.NormalizeUnit(r.UnidadMedida),
		}
		if system {
			line.Cantidad = r.CantidadSistema
		} else {
			line.Cantidad = r.CantidadFisica
		}
		out = append(out, line)
	}
	return out
}
