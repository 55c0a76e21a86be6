package input

import (
	"context"

	"git.fiblab.net/general/common/v2/cache"
	"git.fiblab.net/general/common/v2/mongoutil"
	"git.fiblab.net/general/common/v2/protoutil"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/protobuf/proto"
)

// Input 输入数据
// 说明：环路由配置给出，输入只包含车辆（以person描述）
type Input struct {
	Persons *personv2.Persons
}

// Init 下载数据
// 功能：根据配置加载车辆数据
// 参数：rc-运行时配置，cacheDir-缓存目录
// 返回：加载完成的输入数据指针
// 算法说明：
// 1. 缓存检查：验证缓存目录的有效性
// 2. 文件加载：支持单个或多个文件，优先于MongoDB
// 3. 数据库加载：从MongoDB加载并通过缓存复用
// 4. 数据验证：车辆属性、初始车道位置与ID唯一性
func Init(rc *config.RuntimeConfig, cacheDir string) (res *Input) {
	if !preCheckCache(cacheDir) {
		cacheDir = ""
	}
	res = &Input{
		Persons: &personv2.Persons{
			Persons: make([]*personv2.Person, 0),
		},
	}
	in := rc.All.Input
	if in.Person == nil {
		log.Warn("no person input, the ring is empty")
		return
	}

	switch {
	case in.Person.File != "":
		var p personv2.Persons
		if err := protoutil.UnmarshalFromFile(&p, in.Person.File); err != nil {
			log.Panicf("failed to load person from file: %v", err)
		}
		res.Persons = &p
	case len(in.Person.Files) > 0:
		for _, file := range in.Person.Files {
			var p personv2.Persons
			if err := protoutil.UnmarshalFromFile(&p, file); err != nil {
				log.Panicf("failed to load person from file: %v", err)
			}
			res.Persons.Persons = append(res.Persons.Persons, p.Persons...)
		}
	default:
		var client *mongo.Client
		if in.URI != "" {
			client = mongoutil.NewClient(in.URI)
			defer client.Disconnect(context.Background())
		}
		res.Persons = mustLoad[personv2.Persons](client, *in.Person, cacheDir, nil, func(className string, pb any, rawBson bson.Raw) error {
			return checkPerson(pb.(*personv2.Person), rc.Road)
		})
	}

	for _, p := range res.Persons.Persons {
		if err := checkPerson(p, rc.Road); err != nil {
			log.Panicf("invalid person: %v", err)
		}
	}
	if err := checkDuplicatedIDs(res.Persons.Persons); err != nil {
		log.Panic(err)
	}
	if len(res.Persons.Persons) == 0 {
		log.Error("no valid persons to simulate, may be class=agent rather than class=person")
	}
	log.Infof("load %d vehicles", len(res.Persons.Persons))
	return
}

// mustLoad 必须加载数据（泛型函数）
// 功能：从MongoDB或缓存中加载数据，加载失败则panic
// 参数：client-MongoDB客户端，inputPath-输入路径配置，cacheDir-缓存目录，classNameMapper-类名映射器，handler-数据处理函数，opts-查询选项
func mustLoad[T any, PT interface {
	proto.Message
	*T
}](
	client *mongo.Client,
	inputPath config.InputPath,
	cacheDir string,
	classNameMapper func(string) string,
	handler func(className string, pb any, rawBson bson.Raw) error,
	opts ...*options.FindOptions,
) (res PT) {
	var downloadFunc func() PT
	if !inputPath.OnlyCache {
		if client == nil {
			log.Panicf("input.uri is required to download %s.%s", inputPath.DB, inputPath.Col)
		}
		coll := mongoutil.GetMongoColl(client, inputPath)
		downloadFunc = func() PT {
			pb, errs := mongoutil.DownloadPbFromMongo[T, PT](context.Background(), coll, classNameMapper, handler, opts...)
			if len(errs) > 0 {
				for _, err := range errs {
					log.Errorf("failed to download: %v", err)
				}
				log.Panicln("failed to download")
			}
			return pb
		}
	}
	log.Infof("start fetching from %s.%s", inputPath.DB, inputPath.Col)
	res, err := cache.LoadWithCache(cacheDir, inputPath, downloadFunc)
	if err != nil {
		log.Panicf("failed to load with cache: %v", err)
	}
	log.Infof("finish fetching from %s.%s", inputPath.DB, inputPath.Col)
	return
}
