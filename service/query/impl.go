package query

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain"
)

const (
	queryMaxTime = 20 * time.Second
	// concurrent transactions per process
	maxTransactions = 10
)

var (
	timeNow = time.Now
)

type impl struct {
	client     *mongoclient.Client
	checkIndex bool
	tokens     chan int
	met        metrics.Service
}

// New initializes an impl. With checkIndex every read is explained first
// and unindexed queries fail with ErrCollScan.
func New(client *mongoclient.Client, checkIndex bool) Mongo {
	tokens := make(chan int, maxTransactions)
	for i := 0; i < maxTransactions; i++ {
		tokens <- i + 1
	}
	return &impl{
		client:     client,
		checkIndex: checkIndex,
		tokens:     tokens,
		met:        metrics.New("query"),
	}
}

func (im *impl) logerr(context ctx.Ctx, msg string, err error) {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		im.met.BumpSum("conn.err", 1)
	}
	context.WithFields(log.Fields{"err": err}).Error(msg)
}

func (im *impl) coll(table domain.Table) *mongo.Collection {
	return im.client.Database(im.client.DbName).Collection(string(table))
}

func (im *impl) Insert(context ctx.Ctx, table domain.Table, insert interface{}) error {
	defer im.met.BumpTime("time", "func", "insert", "table", string(table)).End()
	defer im.slowLog(context, string(table), "insert", nil, nil)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table": table,
	})

	if _, err := im.coll(table).InsertOne(context, insert); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		im.logerr(context, "Insert: InsertOne failed", err)
		return err
	}

	return nil
}

func (im *impl) FindOne(context ctx.Ctx, table domain.Table, query, result interface{}) error {
	defer im.met.BumpTime("time", "func", "findone", "table", string(table)).End()
	defer im.slowLog(context, string(table), "findone", query, nil)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table": table,
		"query": query,
	})

	if err := im.checkQueryIndex(context, string(table), "find", bson.E{Key: "filter", Value: query}); err != nil {
		im.logerr(context, "checkQueryIndex failed", err)
		return err
	}

	findOneOpts := options.FindOne().SetMaxTime(queryMaxTime)
	res := im.coll(table).FindOne(context, query, findOneOpts)

	if err := res.Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		im.logerr(context, "FindOne: FindOne error", err)
		return err
	}
	return nil
}

func (im *impl) Count(context ctx.Ctx, table domain.Table, selector interface{}) (n int, err error) {
	defer im.met.BumpTime("time", "func", "count", "table", string(table)).End()
	defer im.slowLog(context, string(table), "count", selector, nil)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	if err := im.checkQueryIndex(context, string(table), "count", bson.E{Key: "query", Value: selector}); err != nil {
		im.logerr(context, "checkQueryIndex failed", err)
		return 0, err
	}

	opts := options.Count().SetMaxTime(queryMaxTime)
	count, err := im.coll(table).CountDocuments(context, selector, opts)
	if err != nil {
		im.logerr(context, "Count: CountDocuments failed", err)
		return 0, err
	}
	return int(count), nil
}

func (im *impl) Upsert(context ctx.Ctx, table domain.Table, selector, update interface{}) error {
	defer im.met.BumpTime("time", "func", "upsert", "table", string(table)).End()
	defer im.slowLog(context, string(table), "upsert", selector, nil)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	replaceOpts := options.Replace().SetUpsert(true)
	if _, err := im.coll(table).ReplaceOne(context, selector, update, replaceOpts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		im.logerr(context, "Upsert: ReplaceOne failed", err)
		return err
	}
	return nil
}

// "-field" sorts descending
func getSortOption(sortStrings ...string) bson.D {
	res := bson.D{}
	for _, sort := range sortStrings {
		if sort == "" {
			continue
		}
		if sort[0] == '-' {
			res = append(res, bson.E{Key: sort[1:], Value: -1})
		} else {
			res = append(res, bson.E{Key: sort, Value: 1})
		}
	}

	return res
}

func (im *impl) Search(context ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error {
	return im.SearchNSorts(context, table, offset, limit, []string{sort}, query, results)
}

func (im *impl) SearchNSorts(context ctx.Ctx, table domain.Table, offset, limit int, sortFields []string, query, results interface{}) error {
	defer im.met.BumpTime("time", "func", "search", "table", string(table)).End()
	defer im.slowLog(context, string(table), "search", query, sortFields)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table": table,
		"query": query,
	})

	if err := im.checkQueryIndex(context, string(table), "find", bson.E{Key: "filter", Value: query}); err != nil {
		im.logerr(context, "checkQueryIndex failed", err)
		return err
	}

	findOpts := options.Find().SetMaxTime(queryMaxTime)
	findOpts.SetLimit(int64(limit)).SetSkip(int64(offset))
	if sortOpt := getSortOption(sortFields...); len(sortOpt) > 0 {
		findOpts.SetSort(sortOpt)
	}
	cursor, err := im.coll(table).Find(context, query, findOpts)
	if err != nil {
		im.logerr(context, "Search: Find failed", err)
		return err
	}
	defer cursor.Close(context)

	if err := cursor.All(context, results); err != nil {
		im.logerr(context, "Search: cursor.All failed", err)
		return err
	}
	return nil
}

func (im *impl) RemoveAll(context ctx.Ctx, table domain.Table, selector interface{}) (int64, error) {
	defer im.met.BumpTime("time", "func", "removeAll", "table", string(table)).End()
	defer im.slowLog(context, string(table), "removeAll", selector, nil)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	res, err := im.coll(table).DeleteMany(context, selector)
	if err != nil {
		im.logerr(context, "RemoveAll: DeleteMany failed", err)
		return 0, err
	}

	return res.DeletedCount, nil
}

func (im *impl) Patch(context ctx.Ctx, table domain.Table, selector, update interface{}, ops ...PatchOp) error {
	defer im.met.BumpTime("time", "func", "update", "table", string(table)).End()
	defer im.slowLog(context, string(table), "update", selector, nil)()

	o := &patchOp{}
	for _, opt := range ops {
		opt(o)
	}

	context = ctx.WithValues(context, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	var err error
	var updateRes *mongo.UpdateResult
	updater := bson.M{"$set": update}
	if o.patchMany {
		updateRes, err = im.coll(table).UpdateMany(context, selector, updater)
		if err != nil {
			im.logerr(context, "Patch: UpdateMany failed", err)
			return err
		}
	} else {
		updateRes, err = im.coll(table).UpdateOne(context, selector, updater)
		if err != nil {
			im.logerr(context, "Patch: UpdateOne failed", err)
			return err
		}
	}

	if updateRes.MatchedCount == 0 && updateRes.ModifiedCount == 0 && updateRes.UpsertedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (im *impl) CustomPatch(context ctx.Ctx, table domain.Table, selector, update bson.M, upsert bool) error {
	defer im.met.BumpTime("time", "func", "customupdate", "table", string(table)).End()
	defer im.slowLog(context, string(table), "customupdate", selector, nil)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	updateOpts := options.Update().SetUpsert(upsert)
	updateRes, err := im.coll(table).UpdateOne(context, selector, update, updateOpts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		im.logerr(context, "CustomPatch: UpdateOne failed", err)
		return err
	}

	if updateRes.MatchedCount == 0 && updateRes.ModifiedCount == 0 && updateRes.UpsertedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (im *impl) FindOneAndUpdate(context ctx.Ctx, table domain.Table, selector, update bson.M, result interface{}) error {
	defer im.met.BumpTime("time", "func", "findOneAndUpdate", "table", string(table)).End()
	defer im.slowLog(context, string(table), "findOneAndUpdate", selector, nil)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := im.coll(table).FindOneAndUpdate(context, selector, update, opts)
	if err := res.Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		im.logerr(context, "FindOneAndUpdate failed", err)
		return err
	}
	return nil
}

func (im *impl) CreateIndexes(context ctx.Ctx, table domain.Table, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	names, err := im.coll(table).Indexes().CreateMany(context, models)
	if err != nil {
		im.logerr(ctx.WithValue(context, "table", table), "CreateIndexes failed", err)
		return err
	}
	context.WithFields(log.Fields{"table": table, "indexes": names}).Info("indexes ensured")
	return nil
}

func (im *impl) RunWithTransaction(context ctx.Ctx, run func(ctx.Ctx) error) error {
	var token int
	select {
	case <-context.Done():
		return context.Err()
	case token = <-im.tokens:
	}
	defer func() {
		im.tokens <- token
	}()

	// explain command is not support in transaction
	if im.checkIndex {
		return run(context)
	}

	defer im.met.BumpTime("time", "func", "transaction").End()

	session, err := im.client.StartSession()
	if err != nil {
		im.logerr(context, "StartSession failed", err)
		return err
	}
	defer session.EndSession(context)

	fn := func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, run(ctx.WithContext(context, sessCtx))
	}
	_, err = session.WithTransaction(context, fn)
	return err
}

func (im *impl) Ping(context ctx.Ctx) error {
	return im.client.Ping(context)
}

func (im *impl) slowLog(context ctx.Ctx, table, action string, query interface{}, sort interface{}) func() {
	start := timeNow()
	threshold := int64(500)

	return func() {
		elapsedMs := time.Since(start).Milliseconds()
		if elapsedMs >= threshold {
			im.met.BumpSum("slowlog", 1, "table", table, "action", action)
			context.WithFields(log.Fields{
				"table":      table,
				"action":     action,
				"startTime":  start.Unix(),
				"durationMs": elapsedMs,
				"query":      query,
				"sort":       sort,
			}).Warn("mongo slowlog")
		}
	}
}

func (im *impl) checkQueryIndex(context ctx.Ctx, table string, action string, query bson.E) error {
	if !im.checkIndex {
		return nil
	}
	// reference: https://docs.mongodb.com/manual/reference/command/explain/
	res := im.client.Database(im.client.DbName).RunCommand(context, bson.D{
		bson.E{
			Key: "explain",
			Value: bson.D{
				bson.E{Key: action, Value: table},
				query,
			},
		},
		bson.E{
			Key:   "verbosity",
			Value: "queryPlanner",
		},
	})

	var m bson.M
	if err := res.Decode(&m); err != nil {
		context.WithField("err", err).Warn("checkQueryIndex decode failed")
		im.met.BumpSum("checkQueryIndex.err", 1)
		return nil
	}

	// The plan layout differs between server versions, so only look for the
	// stage name anywhere in it.
	if strings.Contains(fmt.Sprintf("%v", m), "COLLSCAN") {
		context.WithField("query", query).Warn("COLLSCAN")
		return ErrCollScan
	}
	return nil
}
