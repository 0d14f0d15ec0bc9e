package store

import (
	"context"
	"fmt"
	"strconv"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"coderag/internal/domain"
	"coderag/internal/port"
)

// Payload keys written with every point.
const (
	payloadText     = "text"
	payloadFilePath = "file_path"
	payloadRepoName = "repo_name"
	payloadChunkID  = "chunk_id"
	payloadLanguage = "language"
)

// QdrantStore implements port.VectorStore over Qdrant's gRPC API.
type QdrantStore struct {
	conn        *grpc.ClientConn
	collections pb.CollectionsClient
	points      pb.PointsClient
}

func NewQdrantStore(host string, port int) (*QdrantStore, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &QdrantStore{
		conn:        conn,
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
	}, nil
}

func (s *QdrantStore) ListCollections(ctx context.Context) ([]string, error) {
	resp, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return nil, fmt.Errorf("qdrant list collections: %w", err)
	}
	names := make([]string, 0, len(resp.GetCollections()))
	for _, c := range resp.GetCollections() {
		names = append(names, c.GetName())
	}
	return names, nil
}

func (s *QdrantStore) CollectionInfo(ctx context.Context, name string) (port.CollectionInfo, error) {
	resp, err := s.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: name})
	if err != nil {
		return port.CollectionInfo{}, wrapNotFound(err, name)
	}

	params := resp.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return port.CollectionInfo{}, fmt.Errorf("qdrant collection %s: no single unnamed vector config", name)
	}
	return port.CollectionInfo{
		Name:      name,
		Dimension: int(params.GetSize()),
		Distance:  fromQdrantDistance(params.GetDistance()),
		Points:    int(resp.GetResult().GetPointsCount()),
	}, nil
}

func (s *QdrantStore) CreateCollection(ctx context.Context, name string, dimension int, distance port.Distance) error {
	_, err := s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{Params: &pb.VectorParams{
			Size:     uint64(dimension),
			Distance: toQdrantDistance(distance),
		}}},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection %s: %w", name, err)
	}
	return nil
}

func (s *QdrantStore) DeleteCollection(ctx context.Context, name string) error {
	if _, err := s.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: name}); err != nil {
		return wrapNotFound(err, name)
	}
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, items []port.VectorItem) error {
	points := make([]*pb.PointStruct, len(items))
	for i, item := range items {
		points[i] = toPoint(item)
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", wrapNotFound(err, collection))
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, collection string, query []float32, k int) ([]port.VectorResult, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", wrapNotFound(err, collection))
	}

	results := make([]port.VectorResult, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		results[i] = fromScoredPoint(pt)
	}
	return results, nil
}

func (s *QdrantStore) Count(ctx context.Context, collection string) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{CollectionName: collection, Exact: &exact})
	if err != nil {
		return 0, wrapNotFound(err, collection)
	}
	return int(resp.GetResult().GetCount()), nil
}

func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

func wrapNotFound(err error, collection string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	return err
}

// pointID maps decimal ids onto numeric Qdrant ids and anything else onto UUIDs.
func pointID(id string) *pb.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: n}}
	}
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
}

func pointIDString(id *pb.PointId) string {
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func toPoint(item port.VectorItem) *pb.PointStruct {
	return &pb.PointStruct{
		Id:      pointID(item.ID),
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: item.Vector}}},
		Payload: map[string]*pb.Value{
			payloadText:     {Kind: &pb.Value_StringValue{StringValue: item.Text}},
			payloadFilePath: {Kind: &pb.Value_StringValue{StringValue: item.Metadata.FilePath}},
			payloadRepoName: {Kind: &pb.Value_StringValue{StringValue: item.Metadata.RepoName}},
			payloadChunkID:  {Kind: &pb.Value_IntegerValue{IntegerValue: int64(item.Metadata.ChunkID)}},
			payloadLanguage: {Kind: &pb.Value_StringValue{StringValue: item.Metadata.Language}},
		},
	}
}

func fromScoredPoint(pt *pb.ScoredPoint) port.VectorResult {
	payload := pt.GetPayload()
	return port.VectorResult{
		ID:    pointIDString(pt.GetId()),
		Score: float64(pt.GetScore()),
		Text:  payload[payloadText].GetStringValue(),
		Metadata: domain.ChunkMetadata{
			FilePath: payload[payloadFilePath].GetStringValue(),
			RepoName: payload[payloadRepoName].GetStringValue(),
			ChunkID:  int(payload[payloadChunkID].GetIntegerValue()),
			Language: payload[payloadLanguage].GetStringValue(),
		},
	}
}

func toQdrantDistance(d port.Distance) pb.Distance {
	switch d {
	case port.DistanceDot:
		return pb.Distance_Dot
	case port.DistanceEuclid:
		return pb.Distance_Euclid
	default:
		return pb.Distance_Cosine
	}
}

func fromQdrantDistance(d pb.Distance) port.Distance {
	switch d {
	case pb.Distance_Dot:
		return port.DistanceDot
	case pb.Distance_Euclid:
		return port.DistanceEuclid
	default:
		return port.DistanceCosine
	}
}
