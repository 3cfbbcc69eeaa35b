package sqlinline

const QInsertSearchHistory = `--sql 04733950-2e0d-4257-9671-694252dbb09e
insert into search_history (id, user_id, query, model, summary, sources, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::text, coalesce($5::jsonb, '[]'::jsonb), now())
returning id, created_at;
`

const QSelectSearchHistory = `--sql 96ad4f55-cea6-4925-9af7-af22c408d69d
select id, query, model, summary, sources, created_at
from search_history
where user_id = $1::uuid
order by created_at desc
limit $2::int;
`

const QDeleteSearchHistoryEntry = `--sql 8e91721a-d0e8-43ba-9bdd-8c095a00d6a4
delete from search_history
where id = $1::uuid and user_id = $2::uuid;
`

const QDeleteSearchHistoryForUser = `--sql d0db71a1-e311-487e-85a6-03dbecd38c7a
delete from search_history
where user_id = $1::uuid;
`
