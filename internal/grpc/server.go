// media-service/internal/grpc/server.go
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"media-service/internal/domain"
	"media-service/internal/store"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server реализует MediaLookupServer поверх MediaStore.
type Server struct {
	store  store.MediaStore
	logger *slog.Logger
}

// NewServer создает новый экземпляр gRPC сервера поиска записей.
func NewServer(mediaStore store.MediaStore, logger *slog.Logger) *Server {
	return &Server{
		store:  mediaStore,
		logger: logger,
	}
}

// GetMedia возвращает поля записи в виде Struct.
func (s *Server) GetMedia(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	mediaID := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC GetMedia called", slog.String("media_id", mediaID))

	if mediaID == "" {
		s.logger.WarnContext(ctx, "gRPC GetMedia called with empty media_id")
		return nil, status.Errorf(codes.InvalidArgument, "media_id cannot be empty")
	}

	media, err := s.store.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, store.ErrMediaNotFound) {
			s.logger.WarnContext(ctx, "Media not found by ID for GetMedia", slog.String("media_id", mediaID))
			return nil, status.Errorf(codes.NotFound, "media not found with ID %s", mediaID)
		}
		s.logger.ErrorContext(ctx, "Failed to get media by ID from store for GetMedia", slog.String("media_id", mediaID), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to retrieve media details")
	}

	out, err := MediaToStruct(media)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to convert media to struct", slog.String("media_id", mediaID), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to encode media")
	}
	return out, nil
}

// CheckMediaExists сообщает, есть ли запись с таким ID.
func (s *Server) CheckMediaExists(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	mediaID := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC CheckMediaExists called", slog.String("media_id", mediaID))

	if mediaID == "" {
		s.logger.WarnContext(ctx, "gRPC CheckMediaExists called with empty media_id")
		return nil, status.Errorf(codes.InvalidArgument, "media_id cannot be empty")
	}

	if _, err := s.store.GetByID(ctx, mediaID); err != nil {
		if errors.Is(err, store.ErrMediaNotFound) {
			s.logger.InfoContext(ctx, "Media does not exist (checked via gRPC)", slog.String("media_id", mediaID))
			return wrapperspb.Bool(false), nil
		}
		s.logger.ErrorContext(ctx, "Failed to check media existence from store", slog.String("media_id", mediaID), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to check media existence")
	}
	return wrapperspb.Bool(true), nil
}

// MediaToStruct переводит запись в protobuf Struct. Время передается в RFC 3339.
func MediaToStruct(m *domain.Media) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":        m.ID,
		"title":     m.Title,
		"type":      string(m.Type),
		"director":  m.Director,
		"budget":    m.Budget,
		"location":  m.Location,
		"duration":  m.Duration,
		"year":      m.Year,
		"createdAt": m.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// MediaFromStruct выполняет обратное преобразование.
func MediaFromStruct(s *structpb.Struct) (*domain.Media, error) {
	fields := s.GetFields()
	str := func(key string) string { return fields[key].GetStringValue() }

	m := &domain.Media{
		ID:       str("id"),
		Title:    str("title"),
		Type:     domain.MediaType(str("type")),
		Director: str("director"),
		Budget:   str("budget"),
		Location: str("location"),
		Duration: str("duration"),
		Year:     str("year"),
	}
	if m.ID == "" {
		return nil, errors.New("media struct has no id")
	}
	var err error
	if raw := str("createdAt"); raw != "" {
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, err
		}
	}
	if raw := str("updatedAt"); raw != "" {
		if m.UpdatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// unaryLoggingInterceptor пишет по строке на каждый вызов.
func unaryLoggingInterceptor(logger *slog.Logger) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.InfoContext(ctx, "grpc call completed",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return resp, err
	}
}

// NewGRPCServer собирает grpc.Server с MediaLookup, health и reflection.
// Возвращенный health.Server нужно перевести в NOT_SERVING перед остановкой.
func NewGRPCServer(lookup *Server, logger *slog.Logger, opts ...gogrpc.ServerOption) (*gogrpc.Server, *health.Server) {
	opts = append([]gogrpc.ServerOption{gogrpc.UnaryInterceptor(unaryLoggingInterceptor(logger))}, opts...)
	srv := gogrpc.NewServer(opts...)
	RegisterMediaLookupServer(srv, lookup)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	reflection.Register(srv)
	return srv, healthSrv
}
