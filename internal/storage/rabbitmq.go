package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"job-match-go/internal/config"
	"job-match-go/internal/types"
)

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	// PublishResumeParsed 简历解析完成事件
	PublishResumeParsed(ctx context.Context, event *ResumeParsedEvent) error

	// PublishJobsFetched 岗位抓取完成事件
	PublishJobsFetched(ctx context.Context, event *JobsFetchedEvent) error

	// Close 关闭连接
	Close() error
}

// ResumeParsedEvent 简历解析完成事件载荷
type ResumeParsedEvent struct {
	UserID          string                `json:"user_id"`
	TextMD5         string                `json:"text_md5"`
	SkillCount      int                   `json:"skill_count"`
	ProjectCount    int                   `json:"project_count"`
	ExperienceLevel types.ExperienceLevel `json:"experience_level"`
	ParsedAt        time.Time             `json:"parsed_at"`
}

// JobsFetchedEvent 岗位抓取完成事件载荷
type JobsFetchedEvent struct {
	QueryHash string    `json:"query_hash"`
	QueryText string    `json:"query_text"`
	JobCount  int       `json:"job_count"`
	FetchedAt time.Time `json:"fetched_at"`
}

// 确保RabbitMQ实现了EventPublisher接口
var _ EventPublisher = (*RabbitMQ)(nil)

// RabbitMQ 提供消息队列发布功能
type RabbitMQ struct {
	conn         *amqp.Connection
	channelPool  sync.Pool
	exchangeMap  map[string]bool // 记录已声明的exchange
	publishMutex sync.Mutex
	cfg          *config.RabbitMQConfig
}

// NewRabbitMQ 创建RabbitMQ客户端并声明事件交换机
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器 (%s): %w", cfg.URL, err)
	}

	mq := &RabbitMQ{
		conn:        conn,
		exchangeMap: make(map[string]bool),
		cfg:         cfg,
	}
	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, errPool := conn.Channel()
			if errPool != nil {
				log.Printf("创建RabbitMQ通道失败: %v", errPool)
				return nil
			}
			return ch
		},
	}

	if cfg.EventsExchange != "" {
		if err := mq.EnsureExchange(cfg.EventsExchange, "topic", true); err != nil {
			conn.Close()
			return nil, fmt.Errorf("声明事件交换机失败: %w", err)
		}
	}

	log.Printf("成功连接到RabbitMQ服务器: %s", cfg.URL)
	return mq, nil
}

// getChannel 获取可用通道
func (r *RabbitMQ) getChannel() *amqp.Channel {
	ch := r.channelPool.Get()
	if ch == nil {
		newCh, err := r.conn.Channel()
		if err != nil {
			log.Printf("创建新RabbitMQ通道失败: %v", err)
			return nil
		}
		return newCh
	}
	return ch.(*amqp.Channel)
}

// putChannel 归还通道到池
func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil {
		r.channelPool.Put(ch)
	}
}

// Close 关闭连接
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// EnsureExchange 确保exchange存在
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" {
		return fmt.Errorf("exchange名称不能为空")
	}
	if _, exists := r.exchangeMap[exchangeName]; exists {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.ExchangeDeclare(
		exchangeName,
		exchangeType,
		durable,
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("声明交换机 '%s' 失败: %w", exchangeName, err)
	}

	r.exchangeMap[exchangeName] = true
	log.Printf("已声明交换机: '%s', 类型: '%s'", exchangeName, exchangeType)
	return nil
}

// publishJSON 发布JSON格式的消息
func (r *RabbitMQ) publishJSON(ctx context.Context, routingKey string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}

	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	if r.cfg.PublishTimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.PublishTimeoutSecs)*time.Second)
		defer cancel()
	}

	return ch.PublishWithContext(
		ctx,
		r.cfg.EventsExchange,
		routingKey,
		false, // 强制
		false, // 立即
		amqp.Publishing{
			DeliveryMode: 2, // 持久化
			ContentType:  "application/json",
			Body:         jsonData,
			Timestamp:    time.Now(),
		},
	)
}

// PublishResumeParsed 发布简历解析完成事件
func (r *RabbitMQ) PublishResumeParsed(ctx context.Context, event *ResumeParsedEvent) error {
	if err := r.publishJSON(ctx, r.cfg.ResumeParsedKey, event); err != nil {
		return fmt.Errorf("发布简历解析事件失败: %w", err)
	}
	return nil
}

// PublishJobsFetched 发布岗位抓取完成事件
func (r *RabbitMQ) PublishJobsFetched(ctx context.Context, event *JobsFetchedEvent) error {
	if err := r.publishJSON(ctx, r.cfg.JobsFetchedKey, event); err != nil {
		return fmt.Errorf("发布岗位抓取事件失败: %w", err)
	}
	return nil
}
