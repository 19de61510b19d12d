// internal/documento/repository.go
package documento

import (
	"context"
	"errors"
	"fmt"

	"github.com/KromaEnergia/api-documentos/internal/assinatura"
	"github.com/KromaEnergia/api-documentos/internal/erros"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
	"github.com/KromaEnergia/api-documentos/internal/rateio"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository implementa Store sobre gorm. Cada método é uma transação;
// o estado que o motor validou é conferido de novo dentro dela e, se
// mudou, devolve STALE_STATE.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Migrate cria as tabelas do documento e das coleções dele.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Documento{},
		&assinatura.Signatario{},
		&parcelamento.Parcela{},
		&rateio.Rateio{},
	)
}

var _ Store = (*Repository)(nil)

/* ============================== Leitura ============================== */

// Buscar carrega o documento com signatários, parcelas e rateios.
func (r *Repository) Buscar(ctx context.Context, id string) (*Documento, error) {
	return r.buscar(r.DB.WithContext(ctx), id)
}

func (r *Repository) buscar(db *gorm.DB, id string) (*Documento, error) {
	var doc Documento
	err := db.
		Preload("Signatarios", func(db *gorm.DB) *gorm.DB { return db.Order("ordem ASC") }).
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		Preload("Rateios").
		First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erros.Novo(erros.ErrDocumentoNaoEncontrado, "documento %s não encontrado", id).Com("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("buscar documento %s: %w", id, err)
	}
	doc.Normalizar()
	return &doc, nil
}

/* ============================== Escrita ============================== */

// Criar grava o documento e as coleções numa transação, gerando IDs ausentes.
func (r *Repository) Criar(ctx context.Context, doc *Documento) (*Documento, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Versao == 0 {
		doc.Versao = 1
	}
	for i := range doc.Signatarios {
		doc.Signatarios[i].DocumentoID = doc.ID
		if doc.Signatarios[i].ID == "" {
			doc.Signatarios[i].ID = uuid.NewString()
		}
	}
	doc.Parcelas = comIDsParcelas(doc.ID, doc.Parcelas)
	doc.Rateios = comIDsRateios(doc.ID, doc.Rateios)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(doc).Error
	})
	if err != nil {
		return nil, fmt.Errorf("criar documento: %w", err)
	}
	return r.Buscar(ctx, doc.ID)
}

// Atualizar aplica patch se a versão do documento ainda for patch.Versao.
func (r *Repository) Atualizar(ctx context.Context, id string, patch Patch) (*Documento, error) {
	var out *Documento
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"versao": gorm.Expr("versao + 1")}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if err := r.avancarVersao(tx, id, patch.Versao, updates); err != nil {
			return err
		}

		if patch.Parcelas != nil {
			if err := tx.Where("documento_id = ?", id).Delete(&parcelamento.Parcela{}).Error; err != nil {
				return err
			}
			if parcelas := comIDsParcelas(id, *patch.Parcelas); len(parcelas) > 0 {
				if err := tx.Create(&parcelas).Error; err != nil {
					return err
				}
			}
		}
		if patch.Rateios != nil {
			if err := tx.Where("documento_id = ?", id).Delete(&rateio.Rateio{}).Error; err != nil {
				return err
			}
			if rateios := comIDsRateios(id, *patch.Rateios); len(rateios) > 0 {
				if err := tx.Create(&rateios).Error; err != nil {
					return err
				}
			}
		}

		doc, err := r.buscar(tx, id)
		out = doc
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AplicarAssinatura registra a assinatura/rejeição. Se o signatário da
// intenção não for mais o ativo (alguém agiu antes), devolve STALE_STATE.
func (r *Repository) AplicarAssinatura(ctx context.Context, in IntencaoAssinatura) (*Documento, error) {
	var out *Documento
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		atual, err := r.buscar(tx, in.DocumentoID)
		if err != nil {
			return err
		}

		ativo := assinatura.Ativo(atual.Signatarios)
		if ativo == nil || ativo.ID != in.SignatarioID || ativo.UsuarioID != in.UsuarioID {
			return erros.Novo(erros.ErrEstadoDesatualizado, "o fluxo de assinatura mudou; atualize o documento").
				Com("documentoId", in.DocumentoID).
				Com("signatarioId", in.SignatarioID)
		}

		depois, err := assinatura.Aplicar(atual.Signatarios, in.UsuarioID, in.Acao, in.Motivo, in.Em)
		if err != nil {
			return err
		}
		var novo assinatura.Signatario
		for _, s := range depois {
			if s.ID == in.SignatarioID {
				novo = s
			}
		}

		res := tx.Model(&assinatura.Signatario{}).
			Where("id = ? AND status = ?", in.SignatarioID, assinatura.StatusPendente).
			Updates(map[string]interface{}{
				"status":          novo.Status,
				"assinado_em":     novo.AssinadoEm,
				"rejeitado_em":    novo.RejeitadoEm,
				"motivo_rejeicao": novo.MotivoRejeicao,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return erros.Novo(erros.ErrEstadoDesatualizado, "signatário já agiu; atualize o documento").
				Com("signatarioId", in.SignatarioID)
		}

		status := assinatura.DerivarStatus(depois)
		if err := r.avancarVersao(tx, in.DocumentoID, atual.Versao, map[string]interface{}{
			"versao": gorm.Expr("versao + 1"),
			"status": status,
		}); err != nil {
			return err
		}

		out, err = r.buscar(tx, in.DocumentoID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RegistrarPagamento marca a parcela como paga (transição única).
func (r *Repository) RegistrarPagamento(ctx context.Context, in IntencaoPagamento) (*Documento, error) {
	var out *Documento
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		atual, err := r.buscar(tx, in.DocumentoID)
		if err != nil {
			return err
		}

		dataPagamento := in.DataPagamento
		res := tx.Model(&parcelamento.Parcela{}).
			Where("id = ? AND documento_id = ? AND paga = ?", in.ParcelaID, in.DocumentoID, false).
			Updates(map[string]interface{}{
				"paga":           true,
				"data_pagamento": &dataPagamento,
				"comprovante_id": in.ComprovanteID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&parcelamento.Parcela{}).
				Where("id = ? AND documento_id = ?", in.ParcelaID, in.DocumentoID).
				Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return erros.Novo(erros.ErrParcelaNaoEncontrada, "parcela %s não encontrada", in.ParcelaID).
					Com("parcelaId", in.ParcelaID)
			}
			return erros.Novo(erros.ErrEstadoDesatualizado, "parcela já foi paga; atualize o documento").
				Com("parcelaId", in.ParcelaID)
		}

		if err := r.avancarVersao(tx, in.DocumentoID, atual.Versao, map[string]interface{}{
			"versao": gorm.Expr("versao + 1"),
		}); err != nil {
			return err
		}

		out, err = r.buscar(tx, in.DocumentoID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ============================== Utilidades ============================== */

// avancarVersao aplica updates no documento só se a versão ainda for a esperada.
func (r *Repository) avancarVersao(tx *gorm.DB, id string, versao int, updates map[string]interface{}) error {
	res := tx.Model(&Documento{}).
		Where("id = ? AND versao = ?", id, versao).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := tx.Model(&Documento{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return erros.Novo(erros.ErrDocumentoNaoEncontrado, "documento %s não encontrado", id).Com("id", id)
	}
	return erros.Novo(erros.ErrEstadoDesatualizado, "documento alterado por outra operação; atualize").
		Com("documentoId", id).
		Com("versao", versao)
}

func comIDsParcelas(documentoID string, parcelas []parcelamento.Parcela) []parcelamento.Parcela {
	out := make([]parcelamento.Parcela, len(parcelas))
	for i, p := range parcelas {
		p.DocumentoID = documentoID
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		out[i] = p
	}
	return out
}

func comIDsRateios(documentoID string, rateios []rateio.Rateio) []rateio.Rateio {
	out := make([]rateio.Rateio, len(rateios))
	for i, r := range rateios {
		r.DocumentoID = documentoID
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		out[i] = r
	}
	return out
}
