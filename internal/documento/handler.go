// internal/documento/handler.go
package documento

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/assinatura"
	"github.com/KromaEnergia/api-documentos/internal/auth"
	"github.com/KromaEnergia/api-documentos/internal/erros"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler expõe o Servico em HTTP.
type Handler struct {
	Servico *Servico
	Log     *zap.Logger
}

// NewHandler retorna um handler inicializado
func NewHandler(s *Servico, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Servico: s, Log: log}
}

// Registrar monta as rotas de documentos no router (já autenticado).
func (h *Handler) Registrar(r *mux.Router) {
	r.HandleFunc("/documentos", h.Submeter).Methods("POST")
	r.HandleFunc("/documentos/{id}", h.Buscar).Methods("GET")
	r.HandleFunc("/documentos/{id}/resumo", h.Resumo).Methods("GET")
	r.HandleFunc("/documentos/{id}/relacao", h.Relacao).Methods("GET")
	r.HandleFunc("/documentos/{id}/simulacao", h.Simular).Methods("GET")
	r.HandleFunc("/documentos/{id}/enviar", h.Enviar).Methods("POST")
	r.HandleFunc("/documentos/{id}/assinar", h.Assinar).Methods("POST")
	r.HandleFunc("/documentos/{id}/rejeitar", h.Rejeitar).Methods("POST")
	r.HandleFunc("/documentos/{id}/cancelar", h.Cancelar).Methods("POST")

	r.HandleFunc("/documentos/{id}/parcelas/recalcular", h.RecalcularParcelas).Methods("POST")
	r.HandleFunc("/documentos/{id}/parcelas/regerar", h.RegerarParcelas).Methods("POST")
	r.HandleFunc("/documentos/{id}/parcelas/{numero:[0-9]+}/vencimento", h.EditarVencimento).Methods("PATCH")
	r.HandleFunc("/documentos/{id}/parcelas/{pid}/pagar", h.PagarParcela).Methods("POST")

	r.HandleFunc("/documentos/{id}/rateios", h.AdicionarRateio).Methods("POST")
	r.HandleFunc("/documentos/{id}/rateios/{rid}", h.EditarRateio).Methods("PUT")
	r.HandleFunc("/documentos/{id}/rateios/{rid}", h.RemoverRateio).Methods("DELETE")

	r.HandleFunc("/comprovantes/upload-url", h.UploadComprovante).Methods("POST")
}

/* ============================== Documento ============================== */

// POST /documentos
func (h *Handler) Submeter(w http.ResponseWriter, r *http.Request) {
	var req SubmissaoDocumento
	if !h.decodificar(w, r, &req) {
		return
	}
	v, err := h.Servico.Submeter(r.Context(), auth.UsuarioID(r.Context()), req)
	h.responder(w, r, http.StatusCreated, v, err)
}

// GET /documentos/{id}
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	v, err := h.Servico.Buscar(r.Context(), mux.Vars(r)["id"])
	h.responder(w, r, http.StatusOK, v, err)
}

// GET /documentos/{id}/resumo
func (h *Handler) Resumo(w http.ResponseWriter, r *http.Request) {
	v, err := h.Servico.Buscar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.erro(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v.Resumo)
}

// GET /documentos/{id}/relacao
func (h *Handler) Relacao(w http.ResponseWriter, r *http.Request) {
	v, err := h.Servico.Relacao(r.Context(), mux.Vars(r)["id"], auth.UsuarioID(r.Context()))
	h.responder(w, r, http.StatusOK, v, err)
}

// GET /documentos/{id}/simulacao?acao=SIGN|REJECT
func (h *Handler) Simular(w http.ResponseWriter, r *http.Request) {
	acao, err := assinatura.ParseAcao(r.URL.Query().Get("acao"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := h.Servico.Simular(r.Context(), mux.Vars(r)["id"], auth.UsuarioID(r.Context()), acao)
	h.responder(w, r, http.StatusOK, v, err)
}

// POST /documentos/{id}/enviar
func (h *Handler) Enviar(w http.ResponseWriter, r *http.Request) {
	v, err := h.Servico.Enviar(r.Context(), mux.Vars(r)["id"])
	h.responder(w, r, http.StatusOK, v, err)
}

// POST /documentos/{id}/cancelar
func (h *Handler) Cancelar(w http.ResponseWriter, r *http.Request) {
	v, err := h.Servico.Cancelar(r.Context(), mux.Vars(r)["id"], auth.UsuarioID(r.Context()))
	h.responder(w, r, http.StatusOK, v, err)
}

/* ============================== Assinatura ============================== */

type rejeicaoRequest struct {
	Motivo string `json:"motivo" validate:"max=500"`
}

// POST /documentos/{id}/assinar
func (h *Handler) Assinar(w http.ResponseWriter, r *http.Request) {
	v, err := h.Servico.Assinar(r.Context(), mux.Vars(r)["id"], auth.UsuarioID(r.Context()))
	h.responder(w, r, http.StatusOK, v, err)
}

// POST /documentos/{id}/rejeitar
func (h *Handler) Rejeitar(w http.ResponseWriter, r *http.Request) {
	var req rejeicaoRequest
	if !h.decodificarOpcional(w, r, &req) {
		return
	}
	v, err := h.Servico.Rejeitar(r.Context(), mux.Vars(r)["id"], auth.UsuarioID(r.Context()), req.Motivo)
	h.responder(w, r, http.StatusOK, v, err)
}

/* ============================== Parcelas ============================== */

type vencimentoRequest struct {
	DataVencimento time.Time `json:"dataVencimento"`
}

// POST /documentos/{id}/parcelas/{pid}/pagar
func (h *Handler) PagarParcela(w http.ResponseWriter, r *http.Request) {
	var req PagamentoParcela
	if !h.decodificarOpcional(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	v, err := h.Servico.PagarParcela(r.Context(), vars["id"], vars["pid"], req)
	h.responder(w, r, http.StatusOK, v, err)
}

// POST /documentos/{id}/parcelas/recalcular
func (h *Handler) RecalcularParcelas(w http.ResponseWriter, r *http.Request) {
	v, err := h.Servico.RecalcularParcelas(r.Context(), mux.Vars(r)["id"])
	h.responder(w, r, http.StatusOK, v, err)
}

// POST /documentos/{id}/parcelas/regerar
func (h *Handler) RegerarParcelas(w http.ResponseWriter, r *http.Request) {
	var req ParcelamentoAutomatico
	if !h.decodificar(w, r, &req) {
		return
	}
	v, err := h.Servico.RegerarParcelas(r.Context(), mux.Vars(r)["id"], req)
	h.responder(w, r, http.StatusOK, v, err)
}

// PATCH /documentos/{id}/parcelas/{numero}/vencimento
func (h *Handler) EditarVencimento(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	numero, err := strconv.Atoi(vars["numero"])
	if err != nil {
		http.Error(w, "número de parcela inválido", http.StatusBadRequest)
		return
	}
	var req vencimentoRequest
	if !h.decodificar(w, r, &req) {
		return
	}
	v, err := h.Servico.EditarVencimento(r.Context(), vars["id"], numero, req.DataVencimento)
	h.responder(w, r, http.StatusOK, v, err)
}

/* ============================== Rateio ============================== */

type valorRequest struct {
	Valor int64 `json:"valor"`
}

// POST /documentos/{id}/rateios
func (h *Handler) AdicionarRateio(w http.ResponseWriter, r *http.Request) {
	var req NovoRateio
	if !h.decodificar(w, r, &req) {
		return
	}
	v, err := h.Servico.AdicionarRateio(r.Context(), mux.Vars(r)["id"], req)
	h.responder(w, r, http.StatusCreated, v, err)
}

// PUT /documentos/{id}/rateios/{rid}
func (h *Handler) EditarRateio(w http.ResponseWriter, r *http.Request) {
	var req valorRequest
	if !h.decodificar(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	v, err := h.Servico.EditarRateio(r.Context(), vars["id"], vars["rid"], req.Valor)
	h.responder(w, r, http.StatusOK, v, err)
}

// DELETE /documentos/{id}/rateios/{rid}
func (h *Handler) RemoverRateio(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	v, err := h.Servico.RemoverRateio(r.Context(), vars["id"], vars["rid"])
	h.responder(w, r, http.StatusOK, v, err)
}

/* ============================== Comprovantes ============================== */

type uploadRequest struct {
	NomeArquivo string `json:"nomeArquivo" validate:"required,max=255"`
}

type uploadResponse struct {
	URL   string `json:"url"`
	Chave string `json:"chave"`
}

// POST /comprovantes/upload-url
func (h *Handler) UploadComprovante(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !h.decodificar(w, r, &req) {
		return
	}
	url, chave, err := h.Servico.SolicitarUploadComprovante(r.Context(), req.NomeArquivo)
	if err != nil {
		h.erro(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{URL: url, Chave: chave})
}

/* ============================== Utilidades ============================== */

// limite do corpo das requisições
const tamanhoMaximoCorpo = 1 << 20

var validate = novoValidador()

func novoValidador() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// detalhes com o nome do campo no JSON, não no Go
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		nome := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if nome == "-" {
			return ""
		}
		return nome
	})
	return v
}

func (h *Handler) decodificar(w http.ResponseWriter, r *http.Request, dst any) bool {
	return h.ler(w, r, dst, false)
}

// decodificarOpcional aceita corpo vazio.
func (h *Handler) decodificarOpcional(w http.ResponseWriter, r *http.Request, dst any) bool {
	return h.ler(w, r, dst, true)
}

func (h *Handler) ler(w http.ResponseWriter, r *http.Request, dst any, opcional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, tamanhoMaximoCorpo)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !(opcional && errors.Is(err, io.EOF)) {
		var grande *http.MaxBytesError
		switch {
		case errors.As(err, &grande):
			http.Error(w, "payload grande demais", http.StatusRequestEntityTooLarge)
		case erros.TipoDe(err) != erros.TipoFatal:
			// ex.: cadência "0m" recusada já no decode
			h.erro(w, r, err)
		default:
			http.Error(w, "payload inválido", http.StatusBadRequest)
		}
		return false
	}
	if err := validarPayload(dst); err != nil {
		h.erro(w, r, err)
		return false
	}
	return true
}

func validarPayload(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	f := ve[0]
	campo := f.Namespace()
	if i := strings.Index(campo, "."); i >= 0 {
		campo = campo[i+1:]
	}
	return erros.Novo(erros.ErrPayloadInvalido, "campo %s não atende a regra %s", campo, f.Tag()).
		Com("campo", campo).
		Com("regra", f.Tag()).
		Com("parametro", f.Param())
}

func (h *Handler) responder(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		h.erro(w, r, err)
		return
	}
	writeJSON(w, status, v)
}

// erro escreve {tipo, codigo, mensagem, detalhes} com o status do tipo.
func (h *Handler) erro(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusHTTP(erros.TipoDe(err))
	e, ok := erros.Como(err)
	if !ok {
		h.Log.Error("erro inesperado",
			zap.String("path", r.URL.Path),
			zap.String("usuario_id", auth.UsuarioID(r.Context())),
			zap.Error(err))
		e = erros.Novo(erros.ErrSnapshotInvalido, "erro interno")
		e.Codigo = "INTERNAL"
	} else if status >= http.StatusInternalServerError {
		h.Log.Error("falha na requisição", zap.String("path", r.URL.Path), zap.String("codigo", e.Codigo), zap.Error(err))
	}
	writeJSON(w, status, e)
}

// StatusHTTP mapeia o tipo do erro de negócio para o status HTTP.
func StatusHTTP(t erros.Tipo) int {
	switch t {
	case erros.TipoValidacao, erros.TipoConsistencia:
		return http.StatusUnprocessableEntity
	case erros.TipoConflito:
		return http.StatusConflict
	case erros.TipoNaoEncontrado:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
