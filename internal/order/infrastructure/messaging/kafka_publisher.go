// Package messaging 把订单生命周期事件发布到 Kafka
package messaging

import (
	"context"
	"fmt"

	"github.com/wyfcoding/futurestrading/internal/order/domain"
)

// MessageSender 消息发送者，由 mq.KafkaProducer 实现
type MessageSender interface {
	SendMessage(ctx context.Context, topic string, key string, value any) error
}

// KafkaEventPublisher 实现 domain.EventPublisher，主题为 <prefix>.order.<type>
type KafkaEventPublisher struct {
	sender      MessageSender
	topicPrefix string
}

// NewKafkaEventPublisher 创建 Kafka 事件发布者
func NewKafkaEventPublisher(sender MessageSender, topicPrefix string) *KafkaEventPublisher {
	return &KafkaEventPublisher{sender: sender, topicPrefix: topicPrefix}
}

// PublishOrderEvent 以交易对为 key 发布事件，保证同一交易对内有序
func (p *KafkaEventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	topic := p.Topic(event.Type)
	if err := p.sender.SendMessage(ctx, topic, event.Symbol, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Topic 返回事件类型对应的主题名
func (p *KafkaEventPublisher) Topic(eventType string) string {
	if p.topicPrefix == "" {
		return "order." + eventType
	}
	return p.topicPrefix + ".order." + eventType
}
