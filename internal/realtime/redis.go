package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// FonteRedis implementa Fonte sobre o pub/sub do Redis.
type FonteRedis struct {
	client *redis.Client
}

// NewFonteRedis cria a fonte de assinaturas.
func NewFonteRedis(client *redis.Client) *FonteRedis {
	return &FonteRedis{client: client}
}

// Assinar abre o canal e confirma a inscrição antes de devolver.
func (f *FonteRedis) Assinar(ctx context.Context, canal string) (Assinatura, error) {
	pubsub := f.client.Subscribe(ctx, canal)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	return &assinaturaRedis{pubsub: pubsub}, nil
}

type assinaturaRedis struct {
	pubsub *redis.PubSub
}

func (a *assinaturaRedis) Receber(ctx context.Context) ([]byte, error) {
	msg, err := a.pubsub.ReceiveMessage(ctx)
	if err != nil {
		return nil, err
	}
	return []byte(msg.Payload), nil
}

func (a *assinaturaRedis) Fechar() error {
	return a.pubsub.Close()
}

// Publicador anuncia mutações locais no canal da coleção, para que as
// demais instâncias do painel invalidem seus caches.
type Publicador struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewPublicador cria o publicador de mudanças.
func NewPublicador(client *redis.Client, logger zerolog.Logger) *Publicador {
	return &Publicador{client: client, logger: logger}
}

// Publicar envia o evento de mudança. Falha de publicação não derruba a
// escrita que já aconteceu; é registrada e seguimos.
func (p *Publicador) Publicar(ctx context.Context, colecao, acao, id string, registro any) {
	mudanca := Mudanca{Acao: acao, ID: id}
	if registro != nil {
		if raw, err := json.Marshal(registro); err == nil {
			mudanca.Registro = raw
		}
	}

	payload, err := json.Marshal(mudanca)
	if err != nil {
		p.logger.Error().Err(err).Str("colecao", colecao).Msg("realtime: falha ao serializar mudança")
		return
	}

	if err := p.client.Publish(ctx, CanalPara(colecao), payload).Err(); err != nil {
		p.logger.Warn().Err(err).Str("colecao", colecao).Msg("realtime: falha ao publicar mudança")
	}
}
