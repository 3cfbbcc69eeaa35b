package sqlinline

const QUpsertGoogleUser = `--sql 947726cc-8e53-4038-86d1-8bcd51934b44
insert into users (id, google_sub, email, name, picture, plan, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::text, 'free', now(), now())
on conflict (google_sub) do update set
    email = excluded.email,
    name = excluded.name,
    picture = excluded.picture,
    updated_at = now()
returning id, google_sub, email, name, picture, plan, created_at, updated_at;
`

const QSelectUserByID = `--sql 0a2e6cf9-ad08-4bbe-a13e-a708a9de4912
select id, google_sub, email, name, picture, plan, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QUpdateUserPlanByID = `--sql f26835ad-dcab-4120-ab99-48f7026c80f5
update users
set plan = $2::text, updated_at = now()
where id = $1::uuid
returning id, email, plan;
`

const QUpdateUserPlanByEmail = `--sql 02408912-f126-4f90-b182-4a21ca255385
update users
set plan = $2::text, updated_at = now()
where email = $1::text
returning id, email, plan;
`

const QDeleteUser = `--sql 813a32ca-cf9c-470a-8ca1-e77697c4bc62
delete from users
where id = $1::uuid;
`
