// media-service/internal/clients/media_service_client.go
package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"media-service/internal/domain"
	lookup "media-service/internal/grpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultCallTimeout ограничивает один вызов, если контекст не задает срок раньше.
const DefaultCallTimeout = 3 * time.Second

// MediaServiceClient определяет методы для обращения к media.v1.MediaLookup.
type MediaServiceClient interface {
	CheckMediaExists(ctx context.Context, mediaID string) (bool, error)
	GetMedia(ctx context.Context, mediaID string) (*domain.Media, error)
	Close() error
}

// mediaServiceGRPCClient реализует MediaServiceClient с использованием gRPC.
type mediaServiceGRPCClient struct {
	conn        *grpc.ClientConn
	logger      *slog.Logger
	callTimeout time.Duration
}

// NewMediaServiceGRPCClient создает клиент для адреса вида "localhost:9092".
// Соединение устанавливается лениво, при первом вызове.
func NewMediaServiceGRPCClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (MediaServiceClient, error) {
	logger.Info("Creating MediaLookup gRPC client", slog.String("address", addr))

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		logger.Error("Failed to create MediaLookup gRPC client", slog.String("address", addr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create media service client for %s: %w", addr, err)
	}

	return &mediaServiceGRPCClient{
		conn:        conn,
		logger:      logger,
		callTimeout: DefaultCallTimeout,
	}, nil
}

func (c *mediaServiceGRPCClient) logCallError(ctx context.Context, method, mediaID string, err error) {
	st, _ := status.FromError(err)
	c.logger.ErrorContext(ctx, "MediaLookup gRPC call failed",
		slog.String("method", method),
		slog.String("media_id", mediaID),
		slog.String("code", st.Code().String()),
		slog.String("message", st.Message()))
}

// CheckMediaExists вызывает CheckMediaExists на сервисе каталога.
func (c *mediaServiceGRPCClient) CheckMediaExists(ctx context.Context, mediaID string) (bool, error) {
	c.logger.InfoContext(ctx, "Calling MediaLookup.CheckMediaExists", slog.String("media_id", mediaID))

	if mediaID == "" {
		return false, status.Errorf(codes.InvalidArgument, "mediaID cannot be empty")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	res := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(callCtx, lookup.CheckMediaExistsMethod, wrapperspb.String(mediaID), res); err != nil {
		c.logCallError(ctx, "CheckMediaExists", mediaID, err)
		return false, fmt.Errorf("grpc CheckMediaExists failed for mediaID %s: %w", mediaID, err)
	}

	c.logger.InfoContext(ctx, "MediaLookup.CheckMediaExists call successful", slog.String("media_id", mediaID), slog.Bool("exists", res.GetValue()))
	return res.GetValue(), nil
}

// GetMedia вызывает GetMedia на сервисе каталога.
func (c *mediaServiceGRPCClient) GetMedia(ctx context.Context, mediaID string) (*domain.Media, error) {
	c.logger.InfoContext(ctx, "Calling MediaLookup.GetMedia", slog.String("media_id", mediaID))

	if mediaID == "" {
		return nil, status.Errorf(codes.InvalidArgument, "mediaID cannot be empty")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	res := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, lookup.GetMediaMethod, wrapperspb.String(mediaID), res); err != nil {
		c.logCallError(ctx, "GetMedia", mediaID, err)
		return nil, fmt.Errorf("grpc GetMedia failed for mediaID %s: %w", mediaID, err)
	}

	media, err := lookup.MediaFromStruct(res)
	if err != nil {
		c.logger.WarnContext(ctx, "MediaLookup.GetMedia returned malformed record", slog.String("media_id", mediaID), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.DataLoss, "malformed media record for ID %s: %v", mediaID, err)
	}

	c.logger.InfoContext(ctx, "MediaLookup.GetMedia call successful",
		slog.String("media_id", mediaID),
		slog.String("title_returned", media.Title))
	return media, nil
}

// Close закрывает gRPC соединение.
func (c *mediaServiceGRPCClient) Close() error {
	if c.conn != nil {
		c.logger.Info("Closing gRPC connection to media service")
		return c.conn.Close()
	}
	return nil
}
