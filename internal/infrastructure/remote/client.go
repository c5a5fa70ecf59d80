// Package remote implements the client for the upstream inventory server.
// The server exposes a single endpoint with an action query parameter;
// every call answers a JSON frame with success and message fields.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/internal/domain/catalog"
	"inventario/internal/domain/count"
	"inventario/internal/domain/proforma"
	"inventario/internal/domain/session"
	"inventario/internal/domain/verification"
	"inventario/pkg/logger"
)

// Config holds remote client configuration.
type Config struct {
	BaseURL string
	// Timeout bounds one upstream call. The server is known to stall for
	// tens of seconds under load, so the default is deliberately long.
	Timeout time.Duration
}

// DefaultTimeout matches the longest stall observed on the inventory server.
const DefaultTimeout = 60 * time.Second

// Client talks to the inventory server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New creates a Client. BaseURL must point at the action endpoint root.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// do performs one action call. GET when body is nil, POST otherwise.
// The out target, when non-nil, must embed envelope.
func (c *Client) do(ctx context.Context, action string, query url.Values, body any, out any) error {
	u := *c.baseURL
	q := u.Query()
	q.Set("action", action)
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var reader io.Reader
	method := http.MethodGet
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("remote: encode %s: %w", action, err))
		}
		reader = bytes.NewReader(payload)
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("remote: build %s: %w", action, err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			logger.Warn(ctx, "upstream call timed out",
				"action", action, "elapsed", time.Since(start).String())
			return apperror.NewRemoteTimeout(action, err)
		}
		return apperror.NewRemote(action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewRemote(action, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return apperror.NewRemote(action, fmt.Errorf("status %d", resp.StatusCode))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperror.NewRemote(action, fmt.Errorf("malformed response: %w", err))
	}
	if !env.Success {
		return apperror.NewRemote(action, errors.New(env.Message)).
			WithDetail("server_message", env.Message)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperror.NewRemote(action, fmt.Errorf("decode response: %w", err))
		}
	}

	logger.Debug(ctx, "upstream call completed",
		"action", action, "elapsed", time.Since(start).String())
	return nil
}

// doRaw performs one action call and returns the raw body (PDF download).
func (c *Client) doRaw(ctx context.Context, action string, query url.Values) ([]byte, error) {
	u := *c.baseURL
	q := u.Query()
	q.Set("action", action)
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("remote: build %s: %w", action, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperror.NewRemoteTimeout(action, err)
		}
		return nil, apperror.NewRemote(action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewRemote(action, fmt.Errorf("status %d", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// --- session gateway ---

// FetchSession reads the active cycle and the current count records.
func (c *Client) FetchSession(ctx context.Context) (session.Poll, error) {
	var sess struct {
		envelope
		Numero      int    `json:"numero_inventario"`
		FechaInicio string `json:"fecha_inicio"`
	}
	if err := c.do(ctx, "consultar_sesion", nil, nil, &sess); err != nil {
		return session.Poll{}, err
	}

	poll := session.Poll{Numero: sess.Numero, FechaInicio: sess.FechaInicio}
	if poll.Numero <= 0 {
		return poll, nil
	}

	records, err := c.FetchCounts(ctx)
	if err != nil {
		return session.Poll{}, err
	}
	poll.Records = records
	return poll, nil
}

// AssignSession assigns an inventory number to a store.
func (c *Client) AssignSession(ctx context.Context, numero int, tienda string, supervisor string) error {
	return c.do(ctx, "asignar_sesion", nil, map[string]any{
		"numero_inventario": numero,
		"tienda":            tienda,
		"registrado_por":    supervisor,
	}, nil)
}

// CloseSession closes the active cycle.
func (c *Client) CloseSession(ctx context.Context, numero int, supervisor string) error {
	return c.do(ctx, "cerrar_sesion", nil, map[string]any{
		"numero_inventario": numero,
		"registrado_por":    supervisor,
	}, nil)
}

// --- counts ---

// FetchCounts lists all count records the server knows about.
func (c *Client) FetchCounts(ctx context.Context) ([]count.Record, error) {
	var out struct {
		envelope
		Conteos []countRow `json:"conteos"`
		Datos   []countRow `json:"datos"`
	}
	if err := c.do(ctx, "obtener_conteos", nil, nil, &out); err != nil {
		return nil, err
	}
	rows := out.Conteos
	if len(rows) == 0 {
		rows = out.Datos
	}
	records := make([]count.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toRecord())
	}
	return records, nil
}

// StartCount registers a count as in progress.
func (c *Client) StartCount(ctx context.Context, id count.Identity, registrante string) error {
	return c.do(ctx, "iniciar_conteo", nil, map[string]any{
		"numero_inventario": id.Numero,
		"tipo_conteo":       string(id.Tipo),
		"tienda":            id.Tienda,
		"registrado_por":    registrante,
		"fecha_inicio":      types.NowTimestamp(),
	}, nil)
}

// FinalizeCount submits the full line set and closes the count.
func (c *Client) FinalizeCount(ctx context.Context, id count.Identity, registrante string, lines []count.Line) error {
	detalle := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		detalle = append(detalle, map[string]any{
			"detalle_id":      l.DetalleID,
			"codigo":          l.Codigo,
			"descripcion":     l.Descripcion,
			"unidad_medida":   l.Unidad,
			"cantidad_conteo": l.Cantidad,
		})
	}
	return c.do(ctx, "finalizar_conteo", nil, map[string]any{
		"numero_inventario": id.Numero,
		"tipo_conteo":       string(id.Tipo),
		"tienda":            id.Tienda,
		"registrado_por":    registrante,
		"fecha_fin":         types.NowTimestamp(),
		"detalle":           detalle,
	}, nil)
}

// FetchProducts loads the master product list of the reference count.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	var out productList
	query := url.Values{"conteo_id": {"1"}}
	if err := c.do(ctx, "obtener_productos", query, nil, &out); err != nil {
		return nil, err
	}
	return toProducts(out.rows()), nil
}

// FetchDetalle loads the physical and system line sets of one count.
func (c *Client) FetchDetalle(ctx context.Context, id count.Identity) (fisica []count.Line, sistema []count.Line, err error) {
	var out struct {
		envelope
		Detalle []detalleRow `json:"detalle"`
		Datos   []detalleRow `json:"datos"`
	}
	query := url.Values{
		"numero_inventario": {strconv.Itoa(id.Numero)},
		"tipo_conteo":       {string(id.Tipo)},
		"tienda":            {id.Tienda},
	}
	if err := c.do(ctx, "obtener_detalle", query, nil, &out); err != nil {
		return nil, nil, err
	}
	rows := out.Detalle
	if len(rows) == 0 {
		rows = out.Datos
	}
	return toLines(rows, false), toLines(rows, true), nil
}

// --- comparison edits and audit ---

// EditQuantity applies a supervisor correction to a finalized count line.
func (c *Client) EditQuantity(ctx context.Context, edit count.Edit) error {
	action := "editar_cantidad_fisica"
	if edit.Side == count.SideSistema {
		action = "editar_cantidad_sistema"
	}
	return c.do(ctx, action, nil, map[string]any{
		"numero_inventario": edit.Identity.Numero,
		"tipo_conteo":       string(edit.Identity.Tipo),
		"tienda":            edit.Identity.Tienda,
		"codigo":            edit.Codigo,
		"cantidad":          edit.Cantidad,
		"motivo":            edit.Motivo,
		"error_de":          edit.ErrorDe,
		"observaciones":     edit.Observaciones,
		"editado_por":       edit.Editor,
	}, nil)
}

// UploadSistema relays a system-stock spreadsheet for the warehouse.
func (c *Client) UploadSistema(ctx context.Context, almacen string, filename string, data []byte) error {
	action := "cargar_sistema_" + strings.ToLower(almacen)
	if filename == "" {
		filename = "sistema.xlsx"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("archivo", filename)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("remote: build %s: %w", action, err))
	}
	if _, err := part.Write(data); err != nil {
		return apperror.NewInternal(fmt.Errorf("remote: build %s: %w", action, err))
	}
	if err := mw.Close(); err != nil {
		return apperror.NewInternal(fmt.Errorf("remote: build %s: %w", action, err))
	}

	u := *c.baseURL
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("remote: build %s: %w", action, err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return apperror.NewRemoteTimeout(action, err)
		}
		return apperror.NewRemote(action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewRemote(action, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return apperror.NewRemote(action, fmt.Errorf("status %d", resp.StatusCode))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperror.NewRemote(action, fmt.Errorf("malformed response: %w", err))
	}
	if !env.Success {
		return apperror.NewRemote(action, errors.New(env.Message)).
			WithDetail("server_message", env.Message)
	}
	return nil
}

// GenerateComparison asks the server to rebuild one count's comparison table.
func (c *Client) GenerateComparison(ctx context.Context, id count.Identity) error {
	return c.do(ctx, "generar_comparacion", nil, map[string]any{
		"numero_inventario": id.Numero,
		"tipo_conteo":       string(id.Tipo),
		"tienda":            id.Tienda,
	}, nil)
}

// FetchFinishedPage reads one page of the warehouse's finished counts.
func (c *Client) FetchFinishedPage(ctx context.Context, almacen string, page int) (count.FinishedPage, error) {
	var out struct {
		envelope
		Registros    []countRow `json:"registros"`
		Datos        []countRow `json:"datos"`
		Pagina       int        `json:"pagina"`
		TotalPaginas int        `json:"total_paginas"`
	}
	query := url.Values{
		"almacen": {almacen},
		"pagina":  {strconv.Itoa(page)},
	}
	if err := c.do(ctx, "obtener_historial", query, nil, &out); err != nil {
		return count.FinishedPage{}, err
	}
	rows := out.Registros
	if len(rows) == 0 {
		rows = out.Datos
	}
	result := count.FinishedPage{Page: out.Pagina, TotalPages: out.TotalPaginas}
	if result.Page <= 0 {
		result.Page = page
	}
	result.Records = make([]count.Record, 0, len(rows))
	for _, r := range rows {
		result.Records = append(result.Records, r.toRecord())
	}
	return result, nil
}

// FetchHistory reads the action audit trail of a cycle.
func (c *Client) FetchHistory(ctx context.Context, numero int) ([]count.ActionRecord, error) {
	var out struct {
		envelope
		Historial []count.ActionRecord `json:"historial"`
		Datos     []count.ActionRecord `json:"datos"`
	}
	query := url.Values{"numero_inventario": {strconv.Itoa(numero)}}
	if err := c.do(ctx, "obtener_historial_acciones", query, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Historial) > 0 {
		return out.Historial, nil
	}
	return out.Datos, nil
}

// --- verification gateway ---

// RegisterVerification submits a verification acta.
func (c *Client) RegisterVerification(ctx context.Context, acta verification.Acta) error {
	return c.do(ctx, "registrar_verificacion", nil, acta, nil)
}

// ListVerifications lists the actas of a cycle.
func (c *Client) ListVerifications(ctx context.Context, numero int) ([]verification.Acta, error) {
	var out struct {
		envelope
		Actas []verification.Acta `json:"actas"`
		Datos []verification.Acta `json:"datos"`
	}
	query := url.Values{"numero_inventario": {strconv.Itoa(numero)}}
	if err := c.do(ctx, "listar_verificaciones", query, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Actas) > 0 {
		return out.Actas, nil
	}
	return out.Datos, nil
}

// --- proforma gateway ---

// RegisterProforma registers a proforma and returns it with its server id.
func (c *Client) RegisterProforma(ctx context.Context, p proforma.Proforma) (proforma.Proforma, error) {
	var out struct {
		envelope
		Proforma proforma.Proforma `json:"proforma"`
	}
	if err := c.do(ctx, "registrar_proforma", nil, p, &out); err != nil {
		return proforma.Proforma{}, err
	}
	if out.Proforma.Numero == "" {
		// Some server builds only echo the id.
		out.Proforma = p
	}
	return out.Proforma, nil
}

// ListProformas lists all registered proformas.
func (c *Client) ListProformas(ctx context.Context) ([]proforma.Proforma, error) {
	var out struct {
		envelope
		Proformas []proforma.Proforma `json:"proformas"`
		Datos     []proforma.Proforma `json:"datos"`
	}
	if err := c.do(ctx, "listar_proformas", nil, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Proformas) > 0 {
		return out.Proformas, nil
	}
	return out.Datos, nil
}

// EmitProforma marks a proforma as emitted.
func (c *Client) EmitProforma(ctx context.Context, id int) (proforma.Proforma, error) {
	var out struct {
		envelope
		Proforma proforma.Proforma `json:"proforma"`
	}
	if err := c.do(ctx, "emitir_proforma", nil, map[string]any{"proforma_id": id}, &out); err != nil {
		return proforma.Proforma{}, err
	}
	return out.Proforma, nil
}

// DownloadProformaPDF fetches the rendered PDF.
func (c *Client) DownloadProformaPDF(ctx context.Context, id int) ([]byte, error) {
	query := url.Values{"proforma_id": {strconv.Itoa(id)}}
	return c.doRaw(ctx, "descargar_proforma_pdf", query)
}
