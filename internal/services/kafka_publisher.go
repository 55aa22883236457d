package services

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// CreateKafkaDialer создает dialer для Kafka с поддержкой SASL/PLAIN и TLS (для Aiven)
func CreateKafkaDialer(username, password, caCert string) *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	// Если указаны username и password, используем SASL/PLAIN
	if username != "" && password != "" {
		mechanism := plain.Mechanism{
			Username: username,
			Password: password,
		}
		dialer.SASLMechanism = mechanism
		log.Printf("🔐 Kafka: SASL/PLAIN аутентификация включена (username: %s)", username)
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
	}

	// Если указан CA сертификат, добавляем его в pool
	if caCert != "" {
		caCertPool := x509.NewCertPool()
		if ok := caCertPool.AppendCertsFromPEM([]byte(caCert)); ok {
			tlsConfig.RootCAs = caCertPool
			log.Printf("🔒 Kafka: TLS с CA сертификатом включен")
		} else {
			log.Printf("⚠️ Kafka: не удалось распарсить CA сертификат, используем системные сертификаты")
		}
	}

	// Если есть SASL, всегда включаем TLS (Aiven требует TLS для SASL)
	if dialer.SASLMechanism != nil || caCert != "" {
		dialer.TLS = tlsConfig
		if dialer.SASLMechanism != nil && caCert == "" {
			tlsConfig.RootCAs = nil // Используем системные сертификаты
		}
	}

	return dialer
}

// ParseKafkaBrokers парсит строку с брокерами (может быть через запятую)
func ParseKafkaBrokers(brokers string) []string {
	if brokers == "" {
		return []string{}
	}
	brokerList := strings.Split(strings.ReplaceAll(brokers, " ", ""), ",")
	var result []string
	for _, broker := range brokerList {
		if broker != "" {
			result = append(result, broker)
		}
	}
	return result
}

// ActivityEvent — событие аудита, публикуемое в Kafka
type ActivityEvent struct {
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ActivityPublisher публикует события аудита в Kafka (fire-and-forget).
// Публикация никогда не блокирует основную операцию: события уходят
// в фоновой горутине, ошибки только логируются.
type ActivityPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewActivityPublisher создает publisher. Возвращает nil, если брокеры не заданы
func NewActivityPublisher(brokers, topic, username, password, caCert string) *ActivityPublisher {
	brokerList := ParseKafkaBrokers(brokers)
	if len(brokerList) == 0 {
		return nil
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokerList,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		Dialer:       CreateKafkaDialer(username, password, caCert),
		BatchTimeout: 100 * time.Millisecond,
		Async:        true,
	})

	log.Printf("📨 Kafka publisher готов (topic: %s, brokers: %v)", topic, brokerList)
	return &ActivityPublisher{writer: writer, topic: topic}
}

// Publish отправляет событие асинхронно
func (p *ActivityPublisher) Publish(event ActivityEvent) {
	if p == nil || p.writer == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ Kafka: ошибка сериализации события: %v", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(event.UserID),
			Value: payload,
		})
		if err != nil {
			log.Printf("⚠️ Kafka: не удалось опубликовать событие %s: %v", event.Action, err)
		}
	}()
}

// Close закрывает writer
func (p *ActivityPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
