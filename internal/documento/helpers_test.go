package documento

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/notificacao"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var agora = time.Date(2026, 4, 10, 14, 0, 0, 0, time.UTC)

func relogio() time.Time { return agora }

// novoBanco abre um sqlite em memória exclusivo do teste, já migrado.
func novoBanco(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

type notificadorFake struct {
	mu      sync.Mutex
	eventos []notificacao.Evento
}

func (n *notificadorFake) Enviar(_ context.Context, ev notificacao.Evento) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.eventos = append(n.eventos, ev)
	return nil
}

func (n *notificadorFake) tipos() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, ev := range n.eventos {
		out = append(out, ev.Tipo)
	}
	return out
}

type storageFake struct{}

func (storageFake) GerarURLUpload(_ context.Context, nome string) (string, string, error) {
	return "https://s3.local/comprovantes/x/" + nome + "?X-Amz-Signature=abc", "comprovantes/x/" + nome, nil
}

func novoServico(t *testing.T) (*Servico, *Repository, *notificadorFake) {
	t.Helper()
	repo := NewRepository(novoBanco(t))
	notif := &notificadorFake{}
	s := NovoServico(repo,
		ComNotificador(notif),
		ComArquivos(storageFake{}),
		ComRelogio(relogio),
	)
	return s, repo, notif
}

func total(v int64) *int64 { return &v }

// submissao monta um pedido com quatro signatários em ordem 1..4,
// total 1000,00 em 3 parcelas mensais e rateio exato em duas filiais.
func submissao() SubmissaoDocumento {
	return SubmissaoDocumento{
		Tipo:      "NOTA_FISCAL",
		Descricao: "Serviços de manutenção",
		Total:     total(100000),
		Signatarios: []NovoSignatario{
			{UsuarioID: "u1", Ordem: 1},
			{UsuarioID: "u2", Ordem: 2},
			{UsuarioID: "u3", Ordem: 3},
			{UsuarioID: "u4", Ordem: 4},
		},
		Parcelamento: &ParcelamentoAutomatico{
			Quantidade: 3,
			Cadencia:   parcelamento.Mensal,
			Inicio:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		Rateios: []NovoRateio{
			{Filial: "SP", CentroCusto: "CC-100", Valor: 60000},
			{Filial: "RJ", CentroCusto: "CC-200", Valor: 40000},
		},
	}
}
