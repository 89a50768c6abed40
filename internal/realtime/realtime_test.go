package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaopalco/painel/internal/config"
)

type assinaturaFake struct {
	msgs chan []byte
}

func (a *assinaturaFake) Receber(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-a.msgs:
		if !ok {
			return nil, errors.New("conexão perdida")
		}
		return msg, nil
	}
}

func (a *assinaturaFake) Fechar() error { return nil }

type fonteFake struct {
	mu          sync.Mutex
	assinaturas map[string]*assinaturaFake
	conexoes    int32
	falharAte   int32
}

func newFonteFake() *fonteFake {
	return &fonteFake{assinaturas: make(map[string]*assinaturaFake)}
}

func (f *fonteFake) Assinar(ctx context.Context, canal string) (Assinatura, error) {
	n := atomic.AddInt32(&f.conexoes, 1)
	if n <= atomic.LoadInt32(&f.falharAte) {
		return nil, errors.New("broker indisponível")
	}

	sub := &assinaturaFake{msgs: make(chan []byte, 32)}
	f.mu.Lock()
	f.assinaturas[canal] = sub
	f.mu.Unlock()
	return sub, nil
}

func (f *fonteFake) esperarAssinatura(t *testing.T, canal string) *assinaturaFake {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		sub := f.assinaturas[canal]
		f.mu.Unlock()
		if sub != nil {
			return sub
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscription for %s never opened", canal)
	return nil
}

func configTeste() config.RealtimeConfig {
	return config.RealtimeConfig{
		DebounceJanela:    20 * time.Millisecond,
		EspacoMinimo:      time.Millisecond,
		MaxReconexoes:     5,
		ReconexaoDelayMax: 10 * time.Millisecond,
		ReconexaoCooldown: 50 * time.Millisecond,
	}
}

func esperarAviso(t *testing.T, avisos <-chan string, quer string) {
	t.Helper()
	select {
	case colecao := <-avisos:
		if colecao != quer {
			t.Fatalf("expected notice for %s, got %s", quer, colecao)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s notice", quer)
	}
}

func TestDebounceColapsaRajada(t *testing.T) {
	fonte := newFonteFake()
	assinante := NewAssinante(fonte, configTeste(), zerolog.Nop())
	defer assinante.Encerrar()

	avisos := assinante.Iniciar(context.Background(), []string{"eventos"})
	sub := fonte.esperarAssinatura(t, CanalPara("eventos"))

	for i := 0; i < 10; i++ {
		sub.msgs <- []byte(`{"acao":"insert","id":"1"}`)
	}

	esperarAviso(t, avisos, "eventos")

	// a rajada inteira vira um único aviso
	select {
	case colecao := <-avisos:
		t.Fatalf("unexpected second notice for %s", colecao)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMensagemInvalidaDescartada(t *testing.T) {
	fonte := newFonteFake()
	assinante := NewAssinante(fonte, configTeste(), zerolog.Nop())
	defer assinante.Encerrar()

	avisos := assinante.Iniciar(context.Background(), []string{"notas"})
	sub := fonte.esperarAssinatura(t, CanalPara("notas"))

	sub.msgs <- []byte(`{{{lixo`)
	sub.msgs <- []byte(`{"acao":"update","id":"2"}`)

	esperarAviso(t, avisos, "notas")
}

func TestReconectaAposQueda(t *testing.T) {
	fonte := newFonteFake()
	assinante := NewAssinante(fonte, configTeste(), zerolog.Nop())
	defer assinante.Encerrar()

	avisos := assinante.Iniciar(context.Background(), []string{"crm"})
	sub := fonte.esperarAssinatura(t, CanalPara("crm"))

	// derruba a conexão; o supervisor deve reabrir e continuar entregando
	close(sub.msgs)

	deadline := time.Now().Add(2 * time.Second)
	var novo *assinaturaFake
	for time.Now().Before(deadline) {
		fonte.mu.Lock()
		atual := fonte.assinaturas[CanalPara("crm")]
		fonte.mu.Unlock()
		if atual != nil && atual != sub {
			novo = atual
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if novo == nil {
		t.Fatal("supervisor never reconnected")
	}

	novo.msgs <- []byte(`{"acao":"delete","id":"3"}`)
	esperarAviso(t, avisos, "crm")
}

func TestReconectaAposFalhasDeAssinatura(t *testing.T) {
	fonte := newFonteFake()
	atomic.StoreInt32(&fonte.falharAte, 2)

	assinante := NewAssinante(fonte, configTeste(), zerolog.Nop())
	defer assinante.Encerrar()

	avisos := assinante.Iniciar(context.Background(), []string{"demandas"})
	sub := fonte.esperarAssinatura(t, CanalPara("demandas"))

	if n := atomic.LoadInt32(&fonte.conexoes); n < 3 {
		t.Fatalf("expected at least 3 connection attempts, got %d", n)
	}

	sub.msgs <- []byte(`{"acao":"insert","id":"4"}`)
	esperarAviso(t, avisos, "demandas")
}

func TestEncerrarIdempotente(t *testing.T) {
	fonte := newFonteFake()
	assinante := NewAssinante(fonte, configTeste(), zerolog.Nop())

	avisos := assinante.Iniciar(context.Background(), []string{"eventos"})
	fonte.esperarAssinatura(t, CanalPara("eventos"))

	assinante.Encerrar()
	assinante.Encerrar()

	if _, aberto := <-avisos; aberto {
		t.Fatal("expected closed notice channel after shutdown")
	}
}
