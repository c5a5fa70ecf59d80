package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/internal/domain/count"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

// fakeServer routes by the action query parameter the way the inventory
// server does.
func fakeServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		h, ok := handlers[action]
		if !ok {
			t.Errorf("unexpected action %q", action)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
}

func respond(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestFetchSession(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"consultar_sesion": respond(`{"success":true,"numero_inventario":7,"fecha_inicio":"11/03/2026 08:00:00"}`),
		"obtener_conteos": respond(`{"success":true,"conteos":[
			{"numero_inventario":7,"tipo_conteo":"por_cajas","tienda":"TIENDA 3006","registrado_por":"Maria","estado":"en_proceso","fecha_inicio":"11/03/2026 08:05:00"}
		]}`),
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	poll, err := c.FetchSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, poll.Numero)
	assert.Equal(t, "11/03/2026 08:00:00", poll.FechaInicio)
	require.Len(t, poll.Records, 1)
	assert.Equal(t, "Maria", poll.Records[0].Registrante)
	assert.Equal(t, count.EstadoEnProceso, poll.Records[0].Estado)
}

func TestFetchSession_NoActiveCycleSkipsCounts(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"consultar_sesion": respond(`{"success":true,"numero_inventario":0}`),
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	poll, err := c.FetchSession(context.Background())
	require.NoError(t, err)
	assert.Zero(t, poll.Numero)
	assert.Empty(t, poll.Records)
}

func TestFetchCounts_DatosFallbackAndFlexFields(t *testing.T) {
	// Some server builds answer under "datos", send the store as a number
	// and carry the start under fecha_hora_inicio with a zeroed fecha_inicio.
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"obtener_conteos": respond(`{"success":true,"datos":[
			{"numero_inventario":7,"tipo_conteo":"por_stand","tienda":3006,"registrado_por":"Carlos","estado":"finalizado",
			 "fecha_inicio":"0000-00-00 00:00:00","fecha_hora_inicio":"11/03/2026 09:00:00"}
		]}`),
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	records, err := c.FetchCounts(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "3006", records[0].Tienda)
	assert.Equal(t, "11/03/2026 09:00:00", records[0].FechaInicio)
	assert.Equal(t, count.EstadoFinalizado, records[0].Estado)
}

func TestFetchProducts(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"obtener_productos": respond(`{"success":true,"productos":[
			{"detalle_id":1,"codigo":"A-100","descripcion":" Producto A ","unidad_medida":"DOCENAS","cantidad":12},
			{"detalle_id":2,"item_producto":200,"descripcion":"Sin código","unidad_medida":"","cantidad":"3.5"},
			{"detalle_id":3,"descripcion":"Sin nada","cantidad":0}
		]}`),
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	products, err := c.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 3)
	assert.Equal(t, "A-100", products[0].Codigo)
	assert.Equal(t, "Producto A", products[0].Descripcion)
	assert.Equal(t, "DOCENAS", products[0].Unidad)
	assert.Equal(t, qty(12), products[0].Cantidad)

	// item_producto stands in for a missing code, and a bare number is fine.
	assert.Equal(t, "200", products[1].Codigo)
	assert.Equal(t, "UNIDAD", products[1].Unidad)
	assert.Equal(t, qty(3.5), products[1].Cantidad)

	// A row with neither falls back to its position.
	assert.Equal(t, "3", products[2].Codigo)
}

func TestFetchDetalle(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"obtener_detalle": respond(`{"success":true,"detalle":[
			{"detalle_id":1,"codigo":"A-100","descripcion":"Producto A","unidad_medida":"UNIDAD","cantidad_fisica":10,"cantidad_sistema":8}
		]}`),
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	id := count.Identity{Numero: 7, Tipo: count.TypeCajas, Tienda: "TIENDA 3006"}
	fisica, sistema, err := c.FetchDetalle(context.Background(), id)
	require.NoError(t, err)

	require.Len(t, fisica, 1)
	require.Len(t, sistema, 1)
	assert.Equal(t, qty(10), fisica[0].Cantidad)
	assert.Equal(t, qty(8), sistema[0].Cantidad)
}

func TestFinalizeCount_SendsDetalle(t *testing.T) {
	var got map[string]any
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"finalizar_conteo": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			respond(`{"success":true}`)(w, r)
		},
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	id := count.Identity{Numero: 7, Tipo: count.TypeCajas, Tienda: "TIENDA 3006"}
	err := c.FinalizeCount(context.Background(), id, "Maria", []count.Line{
		{Codigo: "A-100", Unidad: "UNIDAD", Cantidad: qty(4)},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(7), got["numero_inventario"])
	assert.Equal(t, "por_cajas", got["tipo_conteo"])
	assert.Equal(t, "Maria", got["registrado_por"])
	assert.NotEmpty(t, got["fecha_fin"])
	detalle, ok := got["detalle"].([]any)
	require.True(t, ok)
	require.Len(t, detalle, 1)
}

func TestDo_ServerRefusal(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"iniciar_conteo": respond(`{"success":false,"message":"inventario no asignado"}`),
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	id := count.Identity{Numero: 7, Tipo: count.TypeCajas, Tienda: "TIENDA 3006"}
	err := c.StartCount(context.Background(), id, "Maria")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRemote, appErr.Code)
	assert.Equal(t, "inventario no asignado", appErr.Details["server_message"])
}

func TestDo_ServerError(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"obtener_conteos": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	_, err := c.FetchCounts(context.Background())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRemote, appErr.Code)
}

func TestDo_Timeout(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"obtener_conteos": func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			respond(`{"success":true,"conteos":[]}`)(w, r)
		},
	})
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.FetchCounts(context.Background())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRemoteTimeout, appErr.Code)
	assert.True(t, apperror.IsTimeout(err))
}

func TestDownloadProformaPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"descargar_proforma_pdf": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "9", r.URL.Query().Get("proforma_id"))
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write(pdf)
		},
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	got, err := c.DownloadProformaPDF(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestUploadSistema_SendsMultipart(t *testing.T) {
	var gotFilename string
	var gotBody []byte
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"cargar_sistema_callao": func(w http.ResponseWriter, r *http.Request) {
			file, header, err := r.FormFile("archivo")
			require.NoError(t, err)
			defer file.Close()
			gotFilename = header.Filename
			gotBody, err = io.ReadAll(file)
			require.NoError(t, err)
			respond(`{"success":true}`)(w, r)
		},
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	err := c.UploadSistema(context.Background(), "CALLAO", "stock.xlsx", []byte("sheet-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "stock.xlsx", gotFilename)
	assert.Equal(t, []byte("sheet-bytes"), gotBody)
}

func TestUploadSistema_ServerRefusal(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"cargar_sistema_callao": respond(`{"success":false,"message":"formato inválido"}`),
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	err := c.UploadSistema(context.Background(), "callao", "", []byte("x"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRemote, appErr.Code)
	assert.Equal(t, "formato inválido", appErr.Details["server_message"])
}

func TestGenerateComparison(t *testing.T) {
	var got map[string]any
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"generar_comparacion": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			respond(`{"success":true}`)(w, r)
		},
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	err := c.GenerateComparison(context.Background(), count.Identity{
		Numero: 7, Tipo: count.TypeCajas, Tienda: "TIENDA 3006",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 7, got["numero_inventario"])
	assert.Equal(t, "TIENDA 3006", got["tienda"])
}

func TestFetchFinishedPage(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"obtener_historial": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "callao", r.URL.Query().Get("almacen"))
			assert.Equal(t, "2", r.URL.Query().Get("pagina"))
			respond(`{"success":true,"pagina":2,"total_paginas":3,"registros":[
				{"numero_inventario":7,"tipo_conteo":"por_cajas","tienda":"TIENDA 3006","registrado_por":"Maria","estado":"finalizado"}
			]}`)(w, r)
		},
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	page, err := c.FetchFinishedPage(context.Background(), "callao", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Records, 1)
	assert.Equal(t, count.EstadoFinalizado, page.Records[0].Estado)
}

func TestFetchFinishedPage_DatosFallback(t *testing.T) {
	srv := fakeServer(t, map[string]http.HandlerFunc{
		"obtener_historial": respond(`{"success":true,"datos":[
			{"numero_inventario":7,"tipo_conteo":"stand","tienda":"TIENDA 3131","registrado_por":"Jose","estado":"finalizado"}
		]}`),
	})
	defer srv.Close()
	c := newTestClient(t, srv)

	page, err := c.FetchFinishedPage(context.Background(), "malvinas", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Jose", page.Records[0].Registrante)
}
