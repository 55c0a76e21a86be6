package vehicle

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"git.fiblab.net/general/common/v2/parallel"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"git.fiblab.net/sim/protos/v2/go/city/person/v2/personv2connect"
	"git.fiblab.net/sim/syncer/v3"
	"github.com/samber/lo"
)

// Register 将Vehicle管理器注册到Sidecar
// 说明：车辆以person服务对外提供查询
func (m *VehicleManager) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		personv2connect.PersonServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return personv2connect.NewPersonServiceHandler(m, opts...)
		},
	)
}

// personv2connect.PersonService

// GetPerson 获取车辆信息
// 功能：根据ID返回车辆上一步结束时的运动状态与输入数据
func (m *VehicleManager) GetPerson(ctx context.Context, in *connect.Request[personv2.GetPersonRequest]) (*connect.Response[personv2.GetPersonResponse], error) {
	v, ok := m.data[in.Msg.PersonId]
	if !ok {
		_, err := m.GetOrError(in.Msg.PersonId)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	res := &personv2.GetPersonResponse{
		Person: v.ToPersonRuntimePb(true),
	}
	return connect.NewResponse(res), nil
}

// GetPersons 获取多个车辆信息
// 功能：批量获取车辆信息，支持ID筛选与状态排除
// 说明：环路上的车辆状态均为STATUS_DRIVING
func (m *VehicleManager) GetPersons(ctx context.Context, in *connect.Request[personv2.GetPersonsRequest]) (*connect.Response[personv2.GetPersonsResponse], error) {
	req := in.Msg
	ids := lo.SliceToMap(req.PersonIds, func(id int32) (int32, struct{}) { return id, struct{}{} })
	if lo.Contains(req.ExcludeStatuses, personv2.Status_STATUS_DRIVING) {
		return connect.NewResponse(&personv2.GetPersonsResponse{}), nil
	}
	res := &personv2.GetPersonsResponse{
		Persons: parallel.GoMapFilter(m.vehicles, func(v *Vehicle) (*personv2.PersonRuntime, bool) {
			if len(ids) > 0 {
				if _, ok := ids[v.id]; !ok {
					return nil, false
				}
			}
			return v.ToPersonRuntimePb(req.ReturnBase), true
		}),
	}
	return connect.NewResponse(res), nil
}
