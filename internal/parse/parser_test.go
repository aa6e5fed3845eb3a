package parse_test

import (
	"testing"

	"ferrodb/internal/parse"
	"ferrodb/internal/record"

	"github.com/stretchr/testify/require"
)

func TestParser_QueryWithWhereAndAnd(t *testing.T) {
	p, err := parse.NewParser("select sid, sname from student where sid = 1 and sname = 'joe'")
	require.NoError(t, err)

	data, err := p.Query()
	require.NoError(t, err)
	require.Equal(t, []string{"sid", "sname"}, data.Fields)
	require.Equal(t, []string{"student"}, data.Tables)

	c, ok := data.Pred.EquatesWithConstant("sid")
	require.True(t, ok)
	v, _ := c.AsInt()
	require.Equal(t, int32(1), v)
}

func TestParser_QueryWithStar(t *testing.T) {
	p, err := parse.NewParser("select * from student")
	require.NoError(t, err)

	data, err := p.Query()
	require.NoError(t, err)
	require.Nil(t, data.Fields)
	require.Equal(t, []string{"student"}, data.Tables)
}

func TestParser_InsertParsesFieldsAndValues(t *testing.T) {
	p, err := parse.NewParser("insert into student (sid, sname) values (1, 'joe')")
	require.NoError(t, err)

	stmt, err := p.UpdateCmd()
	require.NoError(t, err)
	data, ok := stmt.(parse.InsertData)
	require.True(t, ok)
	require.Equal(t, "student", data.TableName)
	require.Equal(t, []string{"sid", "sname"}, data.Fields)
	require.Len(t, data.Values, 2)
}

func TestParser_InsertMismatchedFieldsAndValuesErrors(t *testing.T) {
	p, err := parse.NewParser("insert into student (sid, sname) values (1)")
	require.NoError(t, err)

	_, err = p.UpdateCmd()
	require.Error(t, err)
}

func TestParser_DeleteWithWhere(t *testing.T) {
	p, err := parse.NewParser("delete from student where sid = 7")
	require.NoError(t, err)

	stmt, err := p.UpdateCmd()
	require.NoError(t, err)
	data, ok := stmt.(parse.DeleteData)
	require.True(t, ok)
	require.Equal(t, "student", data.TableName)
	c, ok := data.Pred.EquatesWithConstant("sid")
	require.True(t, ok)
	v, _ := c.AsInt()
	require.Equal(t, int32(7), v)
}

func TestParser_UpdateSetsFieldConditionally(t *testing.T) {
	p, err := parse.NewParser("update student set sname = 'joseph' where sid = 1")
	require.NoError(t, err)

	stmt, err := p.UpdateCmd()
	require.NoError(t, err)
	data, ok := stmt.(parse.ModifyData)
	require.True(t, ok)
	require.Equal(t, "student", data.TableName)
	require.Equal(t, "sname", data.FieldName)
}

func TestParser_CreateTableParsesFieldTypes(t *testing.T) {
	p, err := parse.NewParser("create table student (sid int, sname varchar(10))")
	require.NoError(t, err)

	stmt, err := p.UpdateCmd()
	require.NoError(t, err)
	data, ok := stmt.(parse.CreateTableData)
	require.True(t, ok)
	require.Equal(t, "student", data.TableName)
	require.True(t, data.Schema.HasField("sid"))
	require.Equal(t, record.Integer, data.Schema.Type("sid"))
	require.True(t, data.Schema.HasField("sname"))
	require.Equal(t, 10, data.Schema.Length("sname"))
}

func TestParser_CreateIndex(t *testing.T) {
	p, err := parse.NewParser("create index idx_sid on student (sid)")
	require.NoError(t, err)

	stmt, err := p.UpdateCmd()
	require.NoError(t, err)
	data, ok := stmt.(parse.CreateIndexData)
	require.True(t, ok)
	require.Equal(t, "idx_sid", data.IndexName)
	require.Equal(t, "student", data.TableName)
	require.Equal(t, "sid", data.FieldName)
}

func TestParser_MalformedStatementReturnsSyntaxError(t *testing.T) {
	p, err := parse.NewParser("select from")
	require.NoError(t, err)

	_, err = p.Query()
	require.Error(t, err)
	var synErr *parse.SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParser_UnknownCommandErrors(t *testing.T) {
	p, err := parse.NewParser("drop table student")
	require.NoError(t, err)

	_, err = p.UpdateCmd()
	require.Error(t, err)
}
